package drive

import (
	"math"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/hardware"
)

// MetersToEncoderUnits converts a travel distance into an encoder target.
func (d *Drivetrain) MetersToEncoderUnits(meters float64) float64 {
	return MetersToEncoderUnits(meters, d.cfg)
}

func MetersToEncoderUnits(meters float64, cfg Config) float64 {
	return 2 * (meters / cfg.WheelCircumference) * cfg.CountsPerRevolution / cfg.GearboxRatio
}

// DistanceReached reports whether the left encoder, as of the last Refresh,
// is within tolerance of the target for meters.
func (d *Drivetrain) DistanceReached(meters float64) bool {
	return math.Abs(d.snapshot.LeftEncoder-d.MetersToEncoderUnits(meters)) <= d.cfg.DistanceTolerance
}

// AutoDrive hands a position target to each side's controller, which runs
// the profiled move itself.
func (d *Drivetrain) AutoDrive(meters float64) {
	target := d.MetersToEncoderUnits(meters)
	d.hw.LeftController.SetReference(target, hardware.SmartMotion)
	d.hw.RightController.SetReference(-target, hardware.SmartMotion)
}

func (d *Drivetrain) ResetEncoders() {
	d.hw.LeftEncoder.SetPosition(0)
	d.hw.RightEncoder.SetPosition(0)
	d.snapshot.LeftEncoder = 0
	d.snapshot.RightEncoder = 0
}
