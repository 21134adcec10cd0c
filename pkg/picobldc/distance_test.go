package picobldc

import (
	"math"
	"testing"
)

type fakeCounters struct {
	raw PerMotorVal[int16]
}

func (f *fakeCounters) RawDistancesTraveled() (PerMotorVal[int16], error) {
	return f.raw, nil
}

func TestDistanceTrackerAccumulates(t *testing.T) {
	f := &fakeCounters{}
	f.raw[FrontLeft] = 1000
	d := NewDistanceTracker(f)

	// The first poll only establishes the baseline.
	expectNoErr(t, d.Poll())
	expectRotations(t, d, FrontLeft, 0)

	f.raw[FrontLeft] = 1000 + 512
	f.raw[BackRight] = -256
	expectNoErr(t, d.Poll())
	expectRotations(t, d, FrontLeft, 2)
	expectRotations(t, d, BackRight, -1)
}

func TestDistanceTrackerHandlesWrap(t *testing.T) {
	f := &fakeCounters{}
	f.raw[FrontRight] = math.MaxInt16 - 127
	d := NewDistanceTracker(f)
	expectNoErr(t, d.Poll())

	f.raw[FrontRight] = math.MinInt16 + 128
	expectNoErr(t, d.Poll())
	expectRotations(t, d, FrontRight, 1)
}

func TestDistanceTrackerZeroAndSetPosition(t *testing.T) {
	f := &fakeCounters{}
	d := NewDistanceTracker(f)
	expectNoErr(t, d.Poll())
	f.raw[BackLeft] = 256 * 3
	expectNoErr(t, d.Poll())
	expectRotations(t, d, BackLeft, 3)

	d.Zero()
	expectRotations(t, d, BackLeft, 0)

	d.SetPosition(BackLeft, 10)
	f.raw[BackLeft] = 256 * 4
	expectNoErr(t, d.Poll())
	expectRotations(t, d, BackLeft, 11)
}

func TestScaleMotorOutput(t *testing.T) {
	if v := ScaleMotorOutput(0); v != 0 {
		t.Errorf("0 scaled to %v", v)
	}
	if v := ScaleMotorOutput(1); v != MotorFullRange {
		t.Errorf("1 scaled to %v, expected %v", v, MotorFullRange)
	}
	if v := ScaleMotorOutput(-0.5); v != -MotorFullRange/2 {
		t.Errorf("-0.5 scaled to %v", v)
	}
	if v := ScaleMotorOutput(100); v != math.MaxInt16 {
		t.Errorf("100 should saturate, got %v", v)
	}
}

func expectNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func expectRotations(t *testing.T, d *DistanceTracker, m int, want float64) {
	t.Helper()
	if got := d.AccumulatedRotations()[m]; math.Abs(got-want) > 1e-9 {
		t.Errorf("Motor %d at %v rotations, expected %v", m, got, want)
	}
}
