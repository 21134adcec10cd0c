// Package limelight subscribes to a ZeroMQ feed of Limelight results.
package limelight

import (
	"context"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision"
)

type Limelight struct {
	endpoint string
	topic    string
	log      log.Logger

	vision.Store
}

func New(endpoint, topic string, staleAfter time.Duration, logger log.Logger) *Limelight {
	return &Limelight{
		endpoint: endpoint,
		topic:    topic,
		log:      logger,
		Store:    vision.Store{StaleAfter: staleAfter},
	}
}

// Loop receives frames until ctx is done.
func (l *Limelight) Loop(ctx context.Context) error {
	socket, err := zmq.NewSocket(zmq.SUB)
	if err != nil {
		return errors.Wrap(err, "failed to create limelight socket")
	}
	defer socket.Close()

	if err := socket.SetRcvtimeo(100 * time.Millisecond); err != nil {
		return errors.Wrap(err, "failed to set receive timeout")
	}
	if err := socket.SetSubscribe(l.topic); err != nil {
		return errors.Wrapf(err, "failed to subscribe to %q", l.topic)
	}
	if err := socket.Connect(l.endpoint); err != nil {
		return errors.Wrapf(err, "failed to connect to %s", l.endpoint)
	}
	l.log.Infof("VISION: limelight feed connected to %s topic %q", l.endpoint, l.topic)

	for ctx.Err() == nil {
		parts, err := socket.RecvMessageBytes(0)
		if err != nil {
			if zmq.AsErrno(err) == zmq.Errno(syscall.EAGAIN) {
				continue
			}
			l.log.Warnf("VISION: receive failed: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if len(parts) == 0 {
			continue
		}
		t, err := vision.ParseLimelight(parts[len(parts)-1])
		if err != nil {
			l.log.Warnf("VISION: %v", err)
			continue
		}
		t.Time = time.Now()
		l.Set(t)
	}
	return ctx.Err()
}
