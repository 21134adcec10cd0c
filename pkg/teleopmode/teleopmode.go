package teleopmode

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/drive"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/joystick"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
)

type Config struct {
	// SlowScale multiplies the sticks while L2 is held.
	SlowScale float64 `yaml:"slowScale"`
	// Output per degree of target offset while aligning.
	AlignTurnGain  float64 `yaml:"alignTurnGain"`
	AlignDriveGain float64 `yaml:"alignDriveGain"`
	AlignMaxOutput float64 `yaml:"alignMaxOutput"`
}

func DefaultConfig() Config {
	return Config{
		SlowScale:      0.25,
		AlignTurnGain:  0.02,
		AlignDriveGain: 0.03,
		AlignMaxOutput: 0.3,
	}
}

// Input is the operator's request for one cycle.  Stick values are as read
// from the pad: pushing forward is negative.
type Input struct {
	LeftY, RightY float64
	Slow          bool
	Align         bool
}

type TeleopMode struct {
	cfg   Config
	drive *drive.Drivetrain
	log   log.Logger

	cancel         context.CancelFunc
	stopWG         sync.WaitGroup
	joystickEvents chan *joystick.Event

	aligning bool
}

func New(cfg Config, d *drive.Drivetrain, logger log.Logger) *TeleopMode {
	return &TeleopMode{
		cfg:            cfg,
		drive:          d,
		log:            logger,
		joystickEvents: make(chan *joystick.Event),
	}
}

func (m *TeleopMode) Name() string {
	return "Teleop mode"
}

func (m *TeleopMode) Start(ctx context.Context) {
	m.stopWG.Add(1)
	var loopCtx context.Context
	loopCtx, m.cancel = context.WithCancel(ctx)
	go m.loop(loopCtx)
}

func (m *TeleopMode) Stop() {
	m.cancel()
	m.stopWG.Wait()
}

func (m *TeleopMode) OnJoystickEvent(event *joystick.Event) {
	m.joystickEvents <- event
}

func (m *TeleopMode) loop(ctx context.Context) {
	defer m.stopWG.Done()
	defer m.drive.Stop()

	m.drive.Stop()
	m.aligning = false
	pad := joystick.NewState()

	ticker := time.NewTicker(m.drive.Config().CyclePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-m.joystickEvents:
			pad.Update(event)
		case <-ticker.C:
			m.drive.Refresh()
			m.runCycle(Input{
				LeftY:  pad.Axis(joystick.AxisLStickY),
				RightY: pad.Axis(joystick.AxisRStickY),
				Slow:   pad.Button(joystick.ButtonL2),
				Align:  pad.Button(joystick.ButtonR1),
			})
			m.drive.Periodic()
		}
	}
}

// runCycle issues this cycle's drive command.  The caller has already
// refreshed the sensors.
func (m *TeleopMode) runCycle(in Input) {
	if in.Align {
		if !m.aligning {
			m.log.Infof("Teleop: aligning to tape")
			m.aligning = true
		}
		m.alignCycle()
		return
	}
	if m.aligning {
		m.log.Infof("Teleop: alignment released")
		m.aligning = false
		m.drive.Stop()
	}

	scale := 1.0
	if in.Slow {
		scale = m.cfg.SlowScale
	}
	m.drive.TankDrive(-in.LeftY*scale, -in.RightY*scale)
}

// alignCycle squares up to the tape first, then closes the distance until
// the tape sits at the expected pitch.
func (m *TeleopMode) alignCycle() {
	target := m.drive.Snapshot().Target
	switch {
	case !target.Visible:
		m.drive.ArcadeDrive(0, 0)
	case !m.drive.AlignedToTapeYaw():
		m.drive.ArcadeDrive(0, m.limit(m.cfg.AlignTurnGain*target.X))
	case !m.drive.AlignedToTapePitch():
		// The tape climbs in the image as we get closer.
		pitchError := target.Y - m.drive.Config().Alignment.ExpectedPitch
		m.drive.ArcadeDrive(m.limit(-m.cfg.AlignDriveGain*pitchError), 0)
	default:
		m.drive.ArcadeDrive(0, 0)
	}
}

func (m *TeleopMode) limit(v float64) float64 {
	return math.Max(-m.cfg.AlignMaxOutput, math.Min(m.cfg.AlignMaxOutput, v))
}
