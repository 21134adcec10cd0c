package balancemode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/drive"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
)

func TestBalanceCycle(t *testing.T) {
	var buf bytes.Buffer
	sim := hardware.NewSim(log.Discard())
	d := drive.New(drive.DefaultConfig(), sim.Drivebase(), log.Discard())
	m := New(d, log.NewWriter(&buf, logrus.InfoLevel))

	// A balance left over from an earlier run must not leak into this one.
	sim.IMU.SetPitch(3)
	d.Refresh()
	d.AutoBalance()
	if d.ProportionalGain() != 0.0061 {
		t.Fatalf("Expected fine gain, got %v", d.ProportionalGain())
	}

	m.begin()
	if d.ProportionalGain() != 0.010 {
		t.Fatalf("Expected coarse gain after starting, got %v", d.ProportionalGain())
	}

	sim.IMU.SetPitch(10)
	d.Refresh()
	m.runCycle()
	if sim.LeftLeader.Value() >= 0 {
		t.Errorf("Expected a correction against the tilt, got %v", sim.LeftLeader.Value())
	}

	sim.IMU.SetPitch(0.2)
	d.Refresh()
	m.runCycle()
	if sim.LeftLeader.Value() != 0 || sim.RightLeader.Value() != 0 {
		t.Errorf("Expected a stop when level, got %v %v", sim.LeftLeader.Value(), sim.RightLeader.Value())
	}
	if !strings.Contains(buf.String(), "Balance: level") {
		t.Errorf("Expected the level transition to be logged, got %q", buf.String())
	}
}
