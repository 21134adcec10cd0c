package balancemode

import (
	"context"
	"sync"
	"time"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/drive"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
)

// BalanceMode levels the robot on a tilting platform and keeps it there until
// stopped.
type BalanceMode struct {
	drive *drive.Drivetrain
	log   log.Logger

	cancel context.CancelFunc
	stopWG sync.WaitGroup

	wasLevel bool
}

func New(d *drive.Drivetrain, logger log.Logger) *BalanceMode {
	return &BalanceMode{
		drive: d,
		log:   logger,
	}
}

func (m *BalanceMode) Name() string {
	return "Balance mode"
}

func (m *BalanceMode) Start(ctx context.Context) {
	m.stopWG.Add(1)
	var loopCtx context.Context
	loopCtx, m.cancel = context.WithCancel(ctx)
	go m.loop(loopCtx)
}

func (m *BalanceMode) Stop() {
	m.cancel()
	m.stopWG.Wait()
}

func (m *BalanceMode) loop(ctx context.Context) {
	defer m.stopWG.Done()
	defer m.drive.Stop()

	m.begin()

	ticker := time.NewTicker(m.drive.Config().CyclePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.drive.Refresh()
			m.runCycle()
			m.drive.Periodic()
		}
	}
}

func (m *BalanceMode) begin() {
	m.drive.Stop()
	m.drive.ResetBalance()
	m.wasLevel = false
}

func (m *BalanceMode) runCycle() {
	m.drive.AutoBalance()
	level := m.drive.BalanceComplete()
	if level != m.wasLevel {
		if level {
			m.log.Infof("Balance: level (pitch %.2f)", m.drive.Snapshot().Pitch)
		} else {
			m.log.Infof("Balance: tilted (pitch %.2f), correcting with gain %v",
				m.drive.Snapshot().Pitch, m.drive.ProportionalGain())
		}
		m.wasLevel = level
	}
}
