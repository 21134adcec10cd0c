package drive

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Periodic logs the attitude and, when the camera has a pose fix, the
// camera's distance from the target.
func (d *Drivetrain) Periodic() {
	s := d.snapshot
	d.log.Debugf("Gyro yaw=%.2f pitch=%.2f roll=%.2f", s.Yaw, s.Pitch, s.Roll)
	if dist, ok := d.CameraDistance(); ok {
		p := s.Target.CamPose
		d.log.Debugf("Camera distance=%.3f translation=(%.3f, %.3f, %.3f) rotation=(%.2f, %.2f, %.2f)",
			dist, p[0], p[1], p[2], p[3], p[4], p[5])
	}
}

// CameraDistance is the length of the camera pose's translation.
func (d *Drivetrain) CameraDistance() (float64, bool) {
	p := d.snapshot.Target.CamPose
	if len(p) < 6 {
		return 0, false
	}
	return r3.Norm(r3.Vec{X: p[0], Y: p[1], Z: p[2]}), true
}
