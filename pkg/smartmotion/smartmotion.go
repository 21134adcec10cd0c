// Package smartmotion runs a motor-side position move: a trapezoidal velocity
// profile toward the target position, tracked by a feed-forward plus
// proportional velocity loop.
package smartmotion

import (
	"math"
	"time"
)

type Config struct {
	KP                float64 `yaml:"kP"`
	KFF               float64 `yaml:"kFF"`
	MinOutput         float64 `yaml:"minOutput"`
	MaxOutput         float64 `yaml:"maxOutput"`
	MaxVelocityRPM    float64 `yaml:"maxVelocityRPM"`
	MaxAccelRPMPerSec float64 `yaml:"maxAccelRPMPerSec"`
	// AllowedError is the position error, in rotations, treated as arrived.
	AllowedError float64 `yaml:"allowedError"`
}

func DefaultConfig() Config {
	return Config{
		KP:                4e-4,
		KFF:               0.000146,
		MinOutput:         -1,
		MaxOutput:         1,
		MaxVelocityRPM:    5000,
		MaxAccelRPMPerSec: 2500,
	}
}

// Controller is driven from the hardware loop.  Positions are in motor
// rotations.
type Controller struct {
	cfg Config

	target       float64
	profileVel   float64 // rev/s
	lastPosition float64
	havePosition bool
}

func New(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// SetTarget starts (or continues) a move to target.  Re-sending the current
// target leaves the profile alone.
func (c *Controller) SetTarget(target float64) {
	c.target = target
}

func (c *Controller) Target() float64 {
	return c.target
}

// ProfileRPM is the velocity the profile is currently asking for.
func (c *Controller) ProfileRPM() float64 {
	return c.profileVel * 60
}

// Reset drops the profile state, e.g. after the encoder has been re-zeroed.
func (c *Controller) Reset() {
	c.profileVel = 0
	c.havePosition = false
}

// Update advances the profile by dt given the measured position and returns
// the motor output.
func (c *Controller) Update(position float64, dt time.Duration) float64 {
	secs := dt.Seconds()
	if secs <= 0 {
		return 0
	}

	measuredVel := 0.0
	if c.havePosition {
		measuredVel = (position - c.lastPosition) / secs
	}
	c.lastPosition = position
	c.havePosition = true

	maxVel := c.cfg.MaxVelocityRPM / 60
	maxAccel := c.cfg.MaxAccelRPMPerSec / 60

	remaining := c.target - position
	desiredVel := 0.0
	if math.Abs(remaining) > c.cfg.AllowedError {
		// Fastest speed from which we can still stop at the target.
		stopVel := math.Sqrt(2 * maxAccel * math.Abs(remaining))
		desiredVel = math.Copysign(math.Min(maxVel, stopVel), remaining)
	}

	maxDelta := maxAccel * secs
	if desiredVel > c.profileVel+maxDelta {
		c.profileVel += maxDelta
	} else if desiredVel < c.profileVel-maxDelta {
		c.profileVel -= maxDelta
	} else {
		c.profileVel = desiredVel
	}

	out := c.cfg.KFF*c.profileVel*60 + c.cfg.KP*(c.profileVel-measuredVel)*60
	return math.Max(c.cfg.MinOutput, math.Min(c.cfg.MaxOutput, out))
}
