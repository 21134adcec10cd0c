// Package vision provides the target detectors the drive code aligns
// against.  Each detector refreshes in its own goroutine at its own rate and
// serves its latest reading without blocking.
package vision

import (
	"sync"
	"time"
)

// Target is one detector reading.  X and Y are the target's horizontal and
// vertical offsets from the crosshair in degrees, positive right and up.
type Target struct {
	Visible bool
	X, Y    float64

	// CamPose is the camera's pose relative to the target, as
	// [x, y, z, pitch, yaw, roll], or nil if the detector doesn't provide one.
	CamPose []float64

	Time time.Time
}

// Store holds a detector's most recent reading.  A reading older than
// StaleAfter is reported as not visible so that a stalled detector can never
// hold an alignment check true.
type Store struct {
	StaleAfter time.Duration
	Now        func() time.Time

	lock   sync.Mutex
	target Target
}

func (s *Store) Set(t Target) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.target = t
}

func (s *Store) Latest() Target {
	s.lock.Lock()
	t := s.target
	s.lock.Unlock()

	if s.StaleAfter > 0 {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		if t.Time.IsZero() || now().Sub(t.Time) > s.StaleAfter {
			t.Visible = false
		}
	}
	return t
}
