package drive

import (
	"math"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/angle"
)

type AlignmentConfig struct {
	// Degrees either side of the crosshair that count as aligned.
	Tolerance float64 `yaml:"tolerance"`
	// ExpectedPitch is where the tape sits vertically when the robot is at
	// scoring distance.
	ExpectedPitch float64 `yaml:"expectedPitch"`
}

func DefaultAlignmentConfig() AlignmentConfig {
	return AlignmentConfig{
		Tolerance:     1.5,
		ExpectedPitch: 12,
	}
}

func (d *Drivetrain) AlignedToTapeYaw() bool {
	t := d.snapshot.Target
	return t.Visible && math.Abs(t.X) <= d.cfg.Alignment.Tolerance
}

func (d *Drivetrain) AlignedToTapePitch() bool {
	t := d.snapshot.Target
	return t.Visible && math.Abs(t.Y-d.cfg.Alignment.ExpectedPitch) <= d.cfg.Alignment.Tolerance
}

// AngleError is the shortest signed turn from the current yaw to expected.
func (d *Drivetrain) AngleError(expected float64) float64 {
	return angle.Error(expected, d.snapshot.Yaw)
}
