package slew

import "time"

// Limiter bounds how fast a commanded value may change.  It is fed once per
// control cycle and moves its output toward the requested value by at most
// RatePerSec * Period on each call.
//
// A Limiter is owned by a single control loop; it is not safe for concurrent use.
type Limiter struct {
	RatePerSec float64
	Period     time.Duration

	value float64
}

func New(ratePerSec float64, period time.Duration) *Limiter {
	return &Limiter{
		RatePerSec: ratePerSec,
		Period:     period,
	}
}

// MaxDelta is the largest change Calculate will make in one call.
func (l *Limiter) MaxDelta() float64 {
	return l.RatePerSec * l.Period.Seconds()
}

// Calculate steps the output toward target and returns the new output.
func (l *Limiter) Calculate(target float64) float64 {
	maxDelta := l.MaxDelta()
	if target > l.value+maxDelta {
		l.value += maxDelta
	} else if target < l.value-maxDelta {
		l.value -= maxDelta
	} else {
		l.value = target
	}
	return l.value
}

// Reset forces the output to value; the next Calculate ramps from there.
func (l *Limiter) Reset(value float64) {
	l.value = value
}

// Value returns the last output without advancing the limiter.
func (l *Limiter) Value() float64 {
	return l.value
}
