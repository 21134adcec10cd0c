package vision

import (
	"math"
	"testing"
	"time"
)

func TestPixelToDegrees(t *testing.T) {
	x, y := PixelToDegrees(160, 120, 320, 240, 60, 45)
	expectDegrees(t, x, 0)
	expectDegrees(t, y, 0)

	x, y = PixelToDegrees(320, 0, 320, 240, 60, 45)
	expectDegrees(t, x, 30)
	expectDegrees(t, y, 22.5)

	x, y = PixelToDegrees(0, 240, 320, 240, 60, 45)
	expectDegrees(t, x, -30)
	expectDegrees(t, y, -22.5)
}

func TestParseLimelight(t *testing.T) {
	tgt, err := ParseLimelight([]byte(`{"tv":1,"tx":-3.5,"ty":2.25,"campose":[1,2,2,0,0,0]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !tgt.Visible || tgt.X != -3.5 || tgt.Y != 2.25 {
		t.Errorf("Unexpected target %+v", tgt)
	}
	if len(tgt.CamPose) != 6 {
		t.Errorf("Expected a camera pose, got %v", tgt.CamPose)
	}

	tgt, err = ParseLimelight([]byte(`{"tv":0,"tx":12,"ty":4,"campose":[]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if tgt.Visible || tgt.CamPose != nil {
		t.Errorf("Expected no target and no pose, got %+v", tgt)
	}

	if _, err := ParseLimelight([]byte(`{"tv":`)); err == nil {
		t.Error("Expected an error for a truncated frame")
	}
}

func TestStaleReadingIsNotVisible(t *testing.T) {
	now := time.Unix(1000, 0)
	l := Store{StaleAfter: 200 * time.Millisecond, Now: func() time.Time { return now }}

	if l.Latest().Visible {
		t.Fatal("Empty store reported a target")
	}

	l.Set(Target{Visible: true, X: 1, Time: now})
	if !l.Latest().Visible {
		t.Fatal("Fresh reading should be visible")
	}

	now = now.Add(time.Second)
	got := l.Latest()
	if got.Visible {
		t.Fatal("Stale reading should not be visible")
	}
	if got.X != 1 {
		t.Errorf("Stale reading should keep its offsets, got %v", got.X)
	}
}

func expectDegrees(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Got %v degrees, expected %v", got, want)
	}
}
