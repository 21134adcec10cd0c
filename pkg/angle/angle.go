package angle

import "math"

// PlusMinus180 is an angle in degrees, stored as a value in range (-180, 180].
// All operations clamp their output into range.
type PlusMinus180 struct {
	float64
}

func (a PlusMinus180) Add(b PlusMinus180) PlusMinus180 {
	return FromFloat(a.float64 + b.float64)
}

func (a PlusMinus180) Sub(b PlusMinus180) PlusMinus180 {
	return FromFloat(a.float64 - b.float64)
}

// Float returns the angle in degrees, range (-180, 180].
func (a PlusMinus180) Float() float64 {
	return a.float64
}

// FromFloat converts a float of any magnitude to a PlusMinus180 by calculating
// f mod 360 and shifting into range.
func FromFloat(f float64) PlusMinus180 {
	d := math.Mod(f, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return PlusMinus180{d}
}

// Error returns the signed rotation, in degrees, that takes measured to
// expected.  Both headings may carry any number of full turns.  The result is
// always in [-180, 180].
func Error(expected, measured float64) float64 {
	diff := math.Remainder(expected, 360) - math.Remainder(measured, 360)
	if diff < -180 {
		return diff + 360
	} else if diff > 180 {
		return diff - 360
	}
	return diff
}

// Unwrapper turns a stream of wrapped headings (as reported by an IMU that
// folds yaw into ±180) into a continuously accumulating heading.
type Unwrapper struct {
	primed bool
	last   PlusMinus180
	total  float64
}

// Update feeds the next wrapped reading and returns the accumulated heading.
// The first reading is taken as-is.
func (u *Unwrapper) Update(wrapped float64) float64 {
	a := FromFloat(wrapped)
	if !u.primed {
		u.primed = true
		u.last = a
		u.total = a.Float()
		return u.total
	}
	u.total += a.Sub(u.last).Float()
	u.last = a
	return u.total
}

// Reset forgets the accumulated heading; the next Update starts afresh.
func (u *Unwrapper) Reset() {
	*u = Unwrapper{}
}
