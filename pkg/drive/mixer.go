package drive

import "math"

// TankDrive drives each side from its own input.  Inputs are clamped to
// [-1, 1] and then slew limited; a side whose limited output falls inside the
// deadband is stopped and its limiter restarted from rest.
func (d *Drivetrain) TankDrive(left, right float64) {
	l := d.deadband(d.leftLimiter.Calculate(clamp(left)), d.leftLimiter.Reset)
	r := d.deadband(d.rightLimiter.Calculate(clamp(right)), d.rightLimiter.Reset)
	d.setOutputs(l, -r)
}

func (d *Drivetrain) deadband(v float64, reset func(float64)) float64 {
	if math.Abs(v) < d.cfg.Deadband {
		reset(0)
		return 0
	}
	return v
}

// ArcadeDrive mixes forward and turn straight through, with no limiting.
func (d *Drivetrain) ArcadeDrive(forward, turn float64) {
	d.setOutputs(forward+turn, -(forward - turn))
}

// setOutputs takes raw per-side outputs; the right side has already been
// inverted.
func (d *Drivetrain) setOutputs(left, right float64) {
	d.hw.Left.Set(clamp(left))
	d.hw.Right.Set(clamp(right))
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
