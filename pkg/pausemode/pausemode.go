package pausemode

import (
	"context"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/drive"
)

type PauseMode struct {
	drive *drive.Drivetrain
}

func New(d *drive.Drivetrain) *PauseMode {
	return &PauseMode{drive: d}
}

func (t *PauseMode) Name() string {
	return "Pause mode"
}

func (t *PauseMode) Start(ctx context.Context) {
	t.drive.Stop()
}

func (t *PauseMode) Stop() {
}
