package automode

import (
	"context"
	"sync"
	"time"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/drive"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
)

type Config struct {
	DistanceMeters float64       `yaml:"distanceMeters"`
	Timeout        time.Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		DistanceMeters: 5.0,
		Timeout:        15 * time.Second,
	}
}

// AutoMode drives a fixed distance straight ahead, then holds still.
type AutoMode struct {
	cfg   Config
	drive *drive.Drivetrain
	log   log.Logger

	cancel context.CancelFunc
	stopWG sync.WaitGroup

	started  time.Time
	finished bool
}

func New(cfg Config, d *drive.Drivetrain, logger log.Logger) *AutoMode {
	return &AutoMode{
		cfg:   cfg,
		drive: d,
		log:   logger,
	}
}

func (m *AutoMode) Name() string {
	return "Auto mode"
}

func (m *AutoMode) Start(ctx context.Context) {
	m.stopWG.Add(1)
	var loopCtx context.Context
	loopCtx, m.cancel = context.WithCancel(ctx)
	go m.loop(loopCtx)
}

func (m *AutoMode) Stop() {
	m.cancel()
	m.stopWG.Wait()
}

func (m *AutoMode) loop(ctx context.Context) {
	defer m.stopWG.Done()
	defer m.drive.Stop()

	m.begin(time.Now())

	ticker := time.NewTicker(m.drive.Config().CyclePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.drive.Refresh()
			m.runCycle(now)
			m.drive.Periodic()
		}
	}
}

func (m *AutoMode) begin(now time.Time) {
	m.log.Infof("Auto: driving %.2fm", m.cfg.DistanceMeters)
	m.drive.ResetEncoders()
	m.started = now
	m.finished = false
}

// runCycle keeps the move going until the distance is reached or the
// timeout expires.  It reports whether the move is over.
func (m *AutoMode) runCycle(now time.Time) bool {
	if m.finished {
		return true
	}
	switch {
	case m.drive.DistanceReached(m.cfg.DistanceMeters):
		m.log.Infof("Auto: reached %.2fm after %v", m.cfg.DistanceMeters, now.Sub(m.started))
	case m.cfg.Timeout > 0 && now.Sub(m.started) > m.cfg.Timeout:
		m.log.Warnf("Auto: gave up after %v at %.2f encoder units", m.cfg.Timeout,
			m.drive.Snapshot().LeftEncoder)
	default:
		m.drive.AutoDrive(m.cfg.DistanceMeters)
		return false
	}
	m.finished = true
	m.drive.Stop()
	return true
}
