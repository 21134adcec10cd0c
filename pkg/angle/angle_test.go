package angle

import (
	"math"
	"testing"
)

func TestError(t *testing.T) {
	expectError(t, 0, 0, 0)
	expectError(t, 10, 350, 20)
	expectError(t, 350, 10, -20)
	expectError(t, 90, 0, 90)
	expectError(t, 0, 90, -90)
	expectError(t, 720+45, 45, 0)
	expectError(t, 45, -720+40, 5)
	expectError(t, 180, 0, 180)
	expectError(t, 0, 180, -180)
	expectError(t, 360, 0, 0)
	expectError(t, -360*5, 360*3, 0)

	// Crossing the ±180 seam takes the short way round.  The sign is
	// expected minus measured after wrapping: 170 - (-170) = 340, which
	// wraps to -20.
	expectError(t, 170, -170, -20)
	expectError(t, -170, 170, 20)
}

func TestErrorAlwaysInRange(t *testing.T) {
	for e := -1000.0; e <= 1000; e += 7.3 {
		for m := -1000.0; m <= 1000; m += 11.9 {
			got := Error(e, m)
			if got < -180 || got > 180 {
				t.Fatalf("Error(%v, %v) = %v, out of range", e, m, got)
			}
			// Applying the error to the measurement must land on the expected heading.
			if d := FromFloat(m + got).Sub(FromFloat(e)).Float(); math.Abs(d) > 1e-9 {
				t.Fatalf("Error(%v, %v) = %v does not reach the expected heading (off by %v)", e, m, got, d)
			}
		}
	}
}

func TestFromFloat(t *testing.T) {
	expectFloat(t, FromFloat(0), 0)
	expectFloat(t, FromFloat(180), 180)
	expectFloat(t, FromFloat(-180), 180)
	expectFloat(t, FromFloat(181), -179)
	expectFloat(t, FromFloat(-181), 179)
	expectFloat(t, FromFloat(720+10), 10)
	expectFloat(t, FromFloat(10).Sub(FromFloat(350)), 20)
	expectFloat(t, FromFloat(170).Add(FromFloat(20)), -170)
}

func TestUnwrapper(t *testing.T) {
	var u Unwrapper
	expectFloatValue(t, u.Update(170), 170)
	expectFloatValue(t, u.Update(179), 179)
	expectFloatValue(t, u.Update(-179), 181)
	expectFloatValue(t, u.Update(-90), 270)
	expectFloatValue(t, u.Update(0), 360)
	expectFloatValue(t, u.Update(-10), 350)

	u.Reset()
	expectFloatValue(t, u.Update(-10), -10)
	expectFloatValue(t, u.Update(-170), -170)
	expectFloatValue(t, u.Update(170), -190)
}

func expectError(t *testing.T, expected, measured, want float64) {
	t.Helper()
	got := Error(expected, measured)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Error(%v, %v) = %v, expected %v", expected, measured, got, want)
	}
}

func expectFloat(t *testing.T, a PlusMinus180, want float64) {
	t.Helper()
	expectFloatValue(t, a.Float(), want)
}

func expectFloatValue(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Got %v, expected %v", got, want)
	}
}
