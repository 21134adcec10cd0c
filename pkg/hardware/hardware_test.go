package hardware

import (
	"testing"
	"time"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/picobldc"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision"
)

type recordingMotor struct {
	values []float64
}

func (m *recordingMotor) Set(output float64) {
	m.values = append(m.values, output)
}

func TestMotorGroupFansOut(t *testing.T) {
	leader, f1, f2 := &recordingMotor{}, &recordingMotor{}, &recordingMotor{}
	g := NewMotorGroup(leader, f1, f2)
	g.Set(0.25)
	g.Set(-1)
	for _, m := range []*recordingMotor{leader, f1, f2} {
		if len(m.values) != 2 || m.values[0] != 0.25 || m.values[1] != -1 {
			t.Errorf("Motor saw %v, expected [0.25 -1]", m.values)
		}
	}
}

func TestSimDutyCycle(t *testing.T) {
	s := NewSim(log.Discard())
	db := s.Drivebase()

	db.Left.Set(0.5)
	db.Right.Set(-1)
	expectValue(t, s.LeftLeader.Value(), 0.5)
	expectValue(t, s.LeftFollower.Value(), 0.5)
	expectValue(t, s.RightFollower.Value(), -1)

	s.Step(time.Second)
	expectValue(t, db.LeftEncoder.Position(), 0.5*DefaultSimFreeSpeed)
	expectValue(t, db.RightEncoder.Position(), -DefaultSimFreeSpeed)

	db.LeftEncoder.SetPosition(0)
	expectValue(t, db.LeftEncoder.Position(), 0)
}

func TestSimSmartMotion(t *testing.T) {
	s := NewSim(log.Discard())
	db := s.Drivebase()

	db.LeftController.SetReference(10, SmartMotion)
	if s.LeftController.Mode() != SmartMotion {
		t.Fatalf("Expected smart motion, got %v", s.LeftController.Mode())
	}
	s.Step(100 * time.Millisecond)
	expectValue(t, db.LeftEncoder.Position(), 6)
	expectValue(t, s.LeftFollower.Value(), 1)
	s.Step(100 * time.Millisecond)
	expectValue(t, db.LeftEncoder.Position(), 10)
	expectValue(t, s.LeftLeader.Value(), 0)

	db.RightController.SetReference(-1000, SmartMotion)
	s.Settle()
	expectValue(t, db.RightEncoder.Position(), -1000)

	// Driving the motors directly cancels the move.
	db.Right.Set(0)
	if s.RightController.Mode() != DutyCycle {
		t.Errorf("Expected duty cycle after Set, got %v", s.RightController.Mode())
	}
}

func TestSimVision(t *testing.T) {
	s := NewSim(log.Discard())
	db := s.Drivebase()
	if db.Vision.Latest().Visible {
		t.Fatal("Sim should start with no target")
	}
	s.Vision.Set(vision.Target{Visible: true, X: 2})
	if got := db.Vision.Latest(); !got.Visible || got.X != 2 {
		t.Errorf("Unexpected target %+v", got)
	}
}

type fakePico struct {
	raw    picobldc.PerMotorVal[int16]
	speeds picobldc.PerMotorVal[float64]
}

func (f *fakePico) SetMotorSpeeds(speeds picobldc.PerMotorVal[float64]) error {
	f.speeds = speeds
	return nil
}

func (f *fakePico) RawDistancesTraveled() (picobldc.PerMotorVal[int16], error) {
	return f.raw, nil
}

func (f *fakePico) Close() error {
	return nil
}

func newTestController() (*I2CController, *fakePico, *picobldc.DistanceTracker) {
	cfg := DefaultConfig()
	cfg.EncoderUnitsPerRotation = 2
	c := NewI2CController(cfg, log.Discard())
	pico := &fakePico{}
	return c, pico, picobldc.NewDistanceTracker(pico)
}

func TestI2CDutyCycle(t *testing.T) {
	c, pico, tracker := newTestController()
	db := c.Drivebase()

	db.Left.Set(0.5)
	db.Right.Set(-0.25)
	if err := c.runCycle(pico, tracker); err != nil {
		t.Fatal(err)
	}
	expectValue(t, pico.speeds[picobldc.FrontLeft], 0.5)
	expectValue(t, pico.speeds[picobldc.BackLeft], 0.5)
	expectValue(t, pico.speeds[picobldc.FrontRight], -0.25)
	expectValue(t, pico.speeds[picobldc.BackRight], -0.25)

	db.RightController.SetReference(0.75, DutyCycle)
	_ = c.runCycle(pico, tracker)
	expectValue(t, pico.speeds[picobldc.BackRight], 0.75)

	c.Stop()
	_ = c.runCycle(pico, tracker)
	for m, s := range pico.speeds {
		if s != 0 {
			t.Errorf("Motor %d still at %v after Stop", m, s)
		}
	}
}

func TestI2CEncoders(t *testing.T) {
	c, pico, tracker := newTestController()
	db := c.Drivebase()

	_ = c.runCycle(pico, tracker)
	pico.raw[picobldc.FrontLeft] = 3 * picobldc.TravelCountsPerRev
	pico.raw[picobldc.FrontRight] = -picobldc.TravelCountsPerRev
	_ = c.runCycle(pico, tracker)
	expectValue(t, db.LeftEncoder.Position(), 6)
	expectValue(t, db.RightEncoder.Position(), -2)

	db.LeftEncoder.SetPosition(0)
	expectValue(t, db.LeftEncoder.Position(), 0)
	_ = c.runCycle(pico, tracker)
	expectValue(t, db.LeftEncoder.Position(), 0)

	pico.raw[picobldc.FrontLeft] += picobldc.TravelCountsPerRev
	_ = c.runCycle(pico, tracker)
	expectValue(t, db.LeftEncoder.Position(), 2)
	expectValue(t, db.RightEncoder.Position(), -2)
}

func TestI2CSmartMotion(t *testing.T) {
	c, pico, tracker := newTestController()
	db := c.Drivebase()

	db.LeftController.SetReference(100, SmartMotion)
	db.RightController.SetReference(-100, SmartMotion)
	_ = c.runCycle(pico, tracker)
	_ = c.runCycle(pico, tracker)

	l := pico.speeds[picobldc.FrontLeft]
	r := pico.speeds[picobldc.FrontRight]
	if l <= 0 || r >= 0 {
		t.Fatalf("Expected left forward and right reverse, got %v %v", l, r)
	}
	expectValue(t, pico.speeds[picobldc.BackLeft], l)
	expectValue(t, pico.speeds[picobldc.BackRight], r)

	// A direct motor command takes the side out of smart motion.
	db.Left.Set(0)
	_ = c.runCycle(pico, tracker)
	expectValue(t, pico.speeds[picobldc.FrontLeft], 0)
	if pico.speeds[picobldc.FrontRight] >= 0 {
		t.Errorf("Right side should still be moving, got %v", pico.speeds[picobldc.FrontRight])
	}
}

func expectValue(t *testing.T, got, want float64) {
	t.Helper()
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Got %v, expected %v", got, want)
	}
}
