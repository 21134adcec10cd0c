package drive

import "github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision"

// SensorSnapshot is everything the core reads from the hardware in one cycle.
type SensorSnapshot struct {
	LeftEncoder, RightEncoder float64

	Pitch, Yaw, Roll float64

	Target vision.Target
}

// Refresh captures a new snapshot.  The active mode calls it at the top of
// every cycle; the other operations work from the captured values.
func (d *Drivetrain) Refresh() SensorSnapshot {
	s := SensorSnapshot{
		LeftEncoder:  d.hw.LeftEncoder.Position(),
		RightEncoder: d.hw.RightEncoder.Position(),
	}
	if d.hw.IMU != nil {
		s.Pitch = d.hw.IMU.Pitch()
		s.Yaw = d.hw.IMU.Yaw()
		s.Roll = d.hw.IMU.Roll()
	}
	if d.hw.Vision != nil {
		s.Target = d.hw.Vision.Latest()
	}
	d.snapshot = s
	return s
}

func (d *Drivetrain) Snapshot() SensorSnapshot {
	return d.snapshot
}
