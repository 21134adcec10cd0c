package drive

import (
	"math"

	"go.einride.tech/pid"
)

// GainBand applies Gain once |pitch| has dropped below Below degrees.
type GainBand struct {
	Below float64 `yaml:"below"`
	Gain  float64 `yaml:"gain"`
}

type BalanceConfig struct {
	// LevelTolerance is the |pitch| in degrees at which the robot stops.
	LevelTolerance float64 `yaml:"levelTolerance"`
	CoarseGain     float64 `yaml:"coarseGain"`
	// Bands are ordered from widest to narrowest.
	Bands []GainBand `yaml:"bands"`
	KI    float64    `yaml:"kI"`
	KD    float64    `yaml:"kD"`
}

func DefaultBalanceConfig() BalanceConfig {
	return BalanceConfig{
		LevelTolerance: 0.5,
		CoarseGain:     0.010,
		Bands: []GainBand{
			{Below: 5.5, Gain: 0.0061},
		},
		KI: 0,
		KD: 0.00125,
	}
}

// AutoBalance runs one cycle of the self-levelling loop against the pitch
// captured by Refresh.  Once a finer band has been entered its gain sticks
// until ResetBalance, so a transient spike in pitch does not bring back the
// coarse gain.
func (d *Drivetrain) AutoBalance() {
	pitch := d.snapshot.Pitch
	cfg := d.cfg.Balance

	d.balanceLevel = math.Abs(pitch) <= cfg.LevelTolerance
	if d.balanceLevel {
		d.ArcadeDrive(0, 0)
		return
	}

	for i := len(cfg.Bands) - 1; i >= 0; i-- {
		if math.Abs(pitch) < cfg.Bands[i].Below {
			if i > d.balanceBand {
				d.balanceBand = i
				d.balancePID.Config.ProportionalGain = cfg.Bands[i].Gain
				d.log.Debugf("Balance: pitch %.2f, switching to gain %v", pitch, cfg.Bands[i].Gain)
			}
			break
		}
	}

	d.balancePID.Update(pid.ControllerInput{
		ReferenceSignal:  0,
		ActualSignal:     pitch,
		SamplingInterval: d.cfg.CyclePeriod,
	})
	d.ArcadeDrive(d.balancePID.State.ControlSignal, 0)
}

// ResetBalance restores the coarse gain and clears the controller history.
// Call it before balancing starts again after an interruption.
func (d *Drivetrain) ResetBalance() {
	cfg := d.cfg.Balance
	d.balancePID = pid.Controller{
		Config: pid.ControllerConfig{
			ProportionalGain: cfg.CoarseGain,
			IntegralGain:     cfg.KI,
			DerivativeGain:   cfg.KD,
		},
	}
	d.balanceBand = -1
	d.balanceLevel = false
}

// BalanceComplete reports whether the last AutoBalance cycle found the robot
// level.  It is recomputed every cycle, not latched.
func (d *Drivetrain) BalanceComplete() bool {
	return d.balanceLevel
}

// ProportionalGain is the gain the balance loop is currently using.
func (d *Drivetrain) ProportionalGain() float64 {
	return d.balancePID.Config.ProportionalGain
}
