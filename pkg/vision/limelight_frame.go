package vision

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// limelightFrame is the JSON published by the camera bridge for each frame.
type limelightFrame struct {
	TV      float64   `json:"tv"`
	TX      float64   `json:"tx"`
	TY      float64   `json:"ty"`
	CamPose []float64 `json:"campose"`
}

// ParseLimelight decodes one published frame.  A campose with fewer than six
// entries is dropped.
func ParseLimelight(data []byte) (Target, error) {
	var msg limelightFrame
	if err := json.Unmarshal(data, &msg); err != nil {
		return Target{}, errors.Wrap(err, "failed to parse limelight frame")
	}
	t := Target{
		Visible: msg.TV >= 1,
		X:       msg.TX,
		Y:       msg.TY,
	}
	if len(msg.CamPose) >= 6 {
		t.CamPose = msg.CamPose[:6]
	}
	return t, nil
}
