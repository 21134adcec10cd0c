package smartmotion

import (
	"math"
	"testing"
	"time"
)

const dt = 20 * time.Millisecond

// motor is a first-order model: its speed lags toward the speed its command
// would give at steady state.
type motor struct {
	kff      float64
	rpm      float64
	position float64
}

func (m *motor) step(out float64) {
	m.rpm += 0.3 * (out/m.kff - m.rpm)
	m.position += m.rpm / 60 * dt.Seconds()
}

func runPlant(c *Controller, cfg Config, start float64, steps int) (position, peakRPM float64) {
	m := &motor{kff: cfg.KFF, position: start}
	for i := 0; i < steps; i++ {
		m.step(c.Update(m.position, dt))
		peakRPM = math.Max(peakRPM, math.Abs(c.ProfileRPM()))
	}
	return m.position, peakRPM
}

func TestReachesTarget(t *testing.T) {
	cfg := DefaultConfig()
	c := New(cfg)
	c.SetTarget(50)

	pos, peak := runPlant(c, cfg, 0, 500)
	if math.Abs(pos-50) > 0.5 {
		t.Errorf("Ended at %v rotations, expected 50", pos)
	}
	if peak > cfg.MaxVelocityRPM+1e-6 {
		t.Errorf("Profile reached %v RPM, above the %v limit", peak, cfg.MaxVelocityRPM)
	}
}

func TestReachesNegativeTarget(t *testing.T) {
	cfg := DefaultConfig()
	c := New(cfg)
	c.SetTarget(-20)

	pos, _ := runPlant(c, cfg, 0, 500)
	if math.Abs(pos+20) > 0.5 {
		t.Errorf("Ended at %v rotations, expected -20", pos)
	}
}

func TestAccelerationIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	c := New(cfg)
	c.SetTarget(1000)

	maxStepRPM := cfg.MaxAccelRPMPerSec * dt.Seconds()
	last := 0.0
	m := &motor{kff: cfg.KFF}
	for i := 0; i < 50; i++ {
		m.step(c.Update(m.position, dt))
		if d := c.ProfileRPM() - last; d > maxStepRPM+1e-6 {
			t.Fatalf("Step %d accelerated by %v RPM, limit %v", i, d, maxStepRPM)
		}
		last = c.ProfileRPM()
	}
}

func TestOutputClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KFF = 1
	c := New(cfg)
	c.SetTarget(1e6)
	for i := 0; i < 10; i++ {
		if out := c.Update(0, dt); out > cfg.MaxOutput {
			t.Fatalf("Output %v above max", out)
		}
	}
}

func TestHoldsAtTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedError = 0.25
	c := New(cfg)
	c.SetTarget(10)
	if out := c.Update(10.1, dt); out != 0 {
		t.Errorf("Expected no output within the allowed error, got %v", out)
	}
}
