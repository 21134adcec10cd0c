package picobldc

type distanceProvider interface {
	RawDistancesTraveled() (PerMotorVal[int16], error)
}

// DistanceTracker accumulates the board's wrapping 16-bit travel counters into
// unbounded per-motor positions.  It must be polled often enough that no
// counter moves more than half its range between polls.
type DistanceTracker struct {
	pico distanceProvider

	doneFirstPoll bool
	lastRawValues PerMotorVal[int16]

	accumulator PerMotorVal[int64]
	offsets     PerMotorVal[float64]
}

func NewDistanceTracker(pico distanceProvider) *DistanceTracker {
	return &DistanceTracker{
		pico: pico,
	}
}

func (d *DistanceTracker) Poll() error {
	raw, err := d.pico.RawDistancesTraveled()
	if err != nil {
		return err
	}

	if d.doneFirstPoll {
		for m, newD := range raw {
			oldD := d.lastRawValues[m]
			delta := newD - oldD
			d.accumulator[m] += int64(delta)
		}
	}

	d.lastRawValues = raw
	d.doneFirstPoll = true
	return nil
}

// AccumulatedRotations returns each motor's position in revolutions.
func (d *DistanceTracker) AccumulatedRotations() (rotations PerMotorVal[float64]) {
	for m, v := range d.accumulator {
		rotations[m] = float64(v)/TravelCountsPerRev + d.offsets[m]
	}
	return
}

// SetPosition redefines motor m's current position as rotations.
func (d *DistanceTracker) SetPosition(m int, rotations float64) {
	d.accumulator[m] = 0
	d.offsets[m] = rotations
}

func (d *DistanceTracker) Zero() {
	d.accumulator = PerMotorVal[int64]{}
	d.offsets = PerMotorVal[float64]{}
}
