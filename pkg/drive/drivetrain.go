// Package drive is the drivetrain control core.  A Drivetrain is owned by a
// single control loop: every method is called from that loop's goroutine once
// per cycle and none of them block.
package drive

import (
	"time"

	"go.einride.tech/pid"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/slew"
)

type Config struct {
	WheelCircumference  float64 `yaml:"wheelCircumference"` // metres
	GearboxRatio        float64 `yaml:"gearboxRatio"`
	CountsPerRevolution float64 `yaml:"countsPerRevolution"`
	// DistanceTolerance is in encoder units.
	DistanceTolerance float64 `yaml:"distanceTolerance"`

	Deadband    float64       `yaml:"deadband"`
	SlewRate    float64       `yaml:"slewRate"` // full-scale output per second
	CyclePeriod time.Duration `yaml:"cyclePeriod"`

	Balance   BalanceConfig   `yaml:"balance"`
	Alignment AlignmentConfig `yaml:"alignment"`
}

func DefaultConfig() Config {
	return Config{
		WheelCircumference:  0.4788, // 6" wheel
		GearboxRatio:        8.45,
		CountsPerRevolution: 42,
		DistanceTolerance:   0.5,
		Deadband:            0.06,
		SlewRate:            3.53,
		CyclePeriod:         20 * time.Millisecond,
		Balance:             DefaultBalanceConfig(),
		Alignment:           DefaultAlignmentConfig(),
	}
}

type Drivetrain struct {
	cfg Config
	hw  hardware.Drivebase
	log log.Logger

	leftLimiter, rightLimiter *slew.Limiter

	snapshot SensorSnapshot

	balancePID   pid.Controller
	balanceBand  int
	balanceLevel bool
}

func New(cfg Config, hw hardware.Drivebase, logger log.Logger) *Drivetrain {
	d := &Drivetrain{
		cfg:          cfg,
		hw:           hw,
		log:          logger,
		leftLimiter:  slew.New(cfg.SlewRate, cfg.CyclePeriod),
		rightLimiter: slew.New(cfg.SlewRate, cfg.CyclePeriod),
	}
	d.ResetBalance()
	return d
}

func (d *Drivetrain) Config() Config {
	return d.cfg
}

// Stop zeroes both sides and forgets any ramp in progress.  Used on mode
// changes.
func (d *Drivetrain) Stop() {
	d.leftLimiter.Reset(0)
	d.rightLimiter.Reset(0)
	d.setOutputs(0, 0)
}
