package hardware

import (
	"context"
	"sync"
	"time"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/bno08x"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/smartmotion"
)

type Config struct {
	I2CBus     string        `yaml:"i2cBus"`
	IMUDevice  string        `yaml:"imuDevice"`
	LoopPeriod time.Duration `yaml:"loopPeriod"`
	// EncoderUnitsPerRotation converts motor rotations, as counted by the
	// motor board, into the units the drivetrain works in.
	EncoderUnitsPerRotation float64            `yaml:"encoderUnitsPerRotation"`
	SmartMotion             smartmotion.Config `yaml:"smartMotion"`
}

func DefaultConfig() Config {
	return Config{
		I2CBus:                  "/dev/i2c-1",
		IMUDevice:               bno08x.DefaultSerialDevice,
		LoopPeriod:              20 * time.Millisecond,
		EncoderUnitsPerRotation: 1,
		SmartMotion:             smartmotion.DefaultConfig(),
	}
}

// VisionSource is a detector that refreshes itself from Loop until the
// context is done.
type VisionSource interface {
	Vision
	Loop(ctx context.Context) error
}

type Hardware struct {
	log log.Logger

	i2c    *I2CController
	imu    *bno08x.BNO08X
	vision VisionSource

	cancel    context.CancelFunc
	loopsDone sync.WaitGroup
}

// New assembles the real robot.  vision may be nil, in which case no target
// is ever reported.
func New(cfg Config, vision VisionSource, logger log.Logger) *Hardware {
	return &Hardware{
		log:    logger,
		i2c:    NewI2CController(cfg, logger),
		imu:    bno08x.New(cfg.IMUDevice, logger),
		vision: vision,
	}
}

var _ Interface = (*Hardware)(nil)

// Start kicks off the background loops and waits for the motor board to
// come up (or fail its first attempt).
func (h *Hardware) Start(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)

	var initDone sync.WaitGroup
	initDone.Add(1)
	h.loopsDone.Add(1)
	go func() {
		defer h.loopsDone.Done()
		h.i2c.Loop(ctx, &initDone)
	}()

	h.loopsDone.Add(1)
	go func() {
		defer h.loopsDone.Done()
		h.imu.LoopReadingReports(ctx)
	}()

	if h.vision != nil {
		h.loopsDone.Add(1)
		go func() {
			defer h.loopsDone.Done()
			h.loopVision(ctx)
		}()
	}

	initDone.Wait()
}

func (h *Hardware) loopVision(ctx context.Context) {
	for ctx.Err() == nil {
		err := h.vision.Loop(ctx)
		if ctx.Err() != nil {
			return
		}
		h.log.Warnf("HW: vision loop stopped; will retry: %v", err)
		time.Sleep(time.Second)
	}
}

func (h *Hardware) Drivebase() Drivebase {
	db := h.i2c.Drivebase()
	db.IMU = h.imu
	if h.vision != nil {
		db.Vision = h.vision
	} else {
		db.Vision = noVision{}
	}
	return db
}

func (h *Hardware) Shutdown() {
	h.log.Infof("HW: Stopping motors")
	h.i2c.Stop()
	// Give the loop a cycle to write the zero outputs.
	time.Sleep(30 * time.Millisecond)
	if h.cancel != nil {
		h.cancel()
	}
	h.loopsDone.Wait()
	h.log.Infof("HW: Shut down")
}
