package automode

import (
	"testing"
	"time"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/drive"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
)

func newTestMode(cfg Config) (*AutoMode, *drive.Drivetrain, *hardware.Sim) {
	sim := hardware.NewSim(log.Discard())
	d := drive.New(drive.DefaultConfig(), sim.Drivebase(), log.Discard())
	return New(cfg, d, log.Discard()), d, sim
}

func TestDrivesToDistance(t *testing.T) {
	m, d, sim := newTestMode(DefaultConfig())
	sim.LeftEncoder.SetPosition(17)

	now := time.Unix(1000, 0)
	m.begin(now)
	if got := sim.LeftEncoder.Position(); got != 0 {
		t.Fatalf("Encoders not reset, at %v", got)
	}

	target := d.MetersToEncoderUnits(5)
	cycles := 0
	for {
		d.Refresh()
		if m.runCycle(now) {
			break
		}
		if sim.LeftController.Mode() != hardware.SmartMotion {
			t.Fatal("Expected smart motion while driving")
		}
		if sim.LeftController.Reference() != target || sim.RightController.Reference() != -target {
			t.Fatalf("Unexpected references %v %v", sim.LeftController.Reference(), sim.RightController.Reference())
		}
		sim.Step(20 * time.Millisecond)
		now = now.Add(20 * time.Millisecond)
		cycles++
		if cycles > 1000 {
			t.Fatal("Never reached the distance")
		}
	}
	if sim.LeftController.Mode() != hardware.DutyCycle || sim.LeftLeader.Value() != 0 {
		t.Error("Expected motors stopped once the distance was reached")
	}
	if !m.runCycle(now) {
		t.Error("Expected to stay finished")
	}
}

func TestTimesOut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = time.Second
	m, d, sim := newTestMode(cfg)

	now := time.Unix(1000, 0)
	m.begin(now)
	d.Refresh()
	if m.runCycle(now) {
		t.Fatal("Finished straight away")
	}
	// The robot never moves.
	d.Refresh()
	if !m.runCycle(now.Add(2 * time.Second)) {
		t.Fatal("Expected a timeout")
	}
	if sim.LeftController.Mode() != hardware.DutyCycle {
		t.Error("Expected motors stopped on timeout")
	}
}
