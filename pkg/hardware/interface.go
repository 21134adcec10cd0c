package hardware

import (
	"context"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision"
)

// Interface is what the binary drives: either the real robot or the sim.
type Interface interface {
	Start(ctx context.Context)
	Drivebase() Drivebase
	Shutdown()
}

// Motor accepts an output fraction in [-1, 1].
type Motor interface {
	Set(output float64)
}

// Encoder reports a side's cumulative position in encoder units.
type Encoder interface {
	Position() float64
	SetPosition(position float64)
}

type ControlMode int

const (
	// DutyCycle treats the reference as a raw output fraction.
	DutyCycle ControlMode = iota
	// SmartMotion treats the reference as a position in encoder units and
	// runs a velocity-profiled move to it.
	SmartMotion
)

func (m ControlMode) String() string {
	switch m {
	case DutyCycle:
		return "duty-cycle"
	case SmartMotion:
		return "smart-motion"
	}
	return "unknown"
}

// PositionController is the closed-loop controller that lives with a side's
// motors.
type PositionController interface {
	SetReference(value float64, mode ControlMode)
}

// IMU angles are in degrees.  Yaw accumulates across full turns.
type IMU interface {
	Pitch() float64
	Yaw() float64
	Roll() float64
}

// Vision returns the most recent detector reading without blocking.
type Vision interface {
	Latest() vision.Target
}

// Drivebase is the set of collaborators the drivetrain core talks to.
type Drivebase struct {
	Left, Right Motor

	LeftEncoder, RightEncoder Encoder

	LeftController, RightController PositionController

	IMU    IMU
	Vision Vision
}

type noVision struct{}

func (noVision) Latest() vision.Target {
	return vision.Target{}
}
