package hardware

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/picobldc"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/smartmotion"
)

const (
	sideLeft = iota
	sideRight
	numSides
)

// Leader first.  The followers copy the leader's output whenever the side is
// under smart-motion control.
var sideMotors = [numSides][]int{
	sideLeft:  {picobldc.FrontLeft, picobldc.BackLeft},
	sideRight: {picobldc.FrontRight, picobldc.BackRight},
}

func sideOf(motor int) int {
	for s, motors := range sideMotors {
		for _, m := range motors {
			if m == motor {
				return s
			}
		}
	}
	panic("unknown motor")
}

type i2cSide struct {
	mode       ControlMode
	controller *smartmotion.Controller

	// position is the leader's latest position in encoder units.
	position    float64
	newPosition *float64
}

// I2CController owns the motor board.  Callers only record what they want;
// the loop goroutine applies it and refreshes the encoder readings once per
// period.
type I2CController struct {
	busDevice        string
	period           time.Duration
	unitsPerRotation float64
	log              log.Logger

	openPico func() (picobldc.Interface, error)

	lock  sync.Mutex
	duty  picobldc.PerMotorVal[float64]
	sides [numSides]i2cSide
}

func NewI2CController(cfg Config, logger log.Logger) *I2CController {
	c := &I2CController{
		busDevice:        cfg.I2CBus,
		period:           cfg.LoopPeriod,
		unitsPerRotation: cfg.EncoderUnitsPerRotation,
		log:              logger,
	}
	if c.unitsPerRotation == 0 {
		c.unitsPerRotation = 1
	}
	c.openPico = func() (picobldc.Interface, error) {
		p, err := picobldc.New(c.busDevice, logger)
		if err != nil {
			return nil, err
		}
		if err := p.SetWatchdog(10 * c.period); err != nil {
			_ = p.Close()
			return nil, err
		}
		return p, nil
	}
	for s := range c.sides {
		c.sides[s].controller = smartmotion.New(cfg.SmartMotion)
	}
	return c
}

func (c *I2CController) Motor(m int) Motor {
	return &i2cMotor{c: c, m: m}
}

func (c *I2CController) Encoder(side int) Encoder {
	return &i2cEncoder{c: c, side: side}
}

func (c *I2CController) PositionController(side int) PositionController {
	return &i2cPositionController{c: c, side: side}
}

// Drivebase wires the four motors into one group per side.
func (c *I2CController) Drivebase() Drivebase {
	group := func(side int) Motor {
		motors := sideMotors[side]
		var followers []Motor
		for _, m := range motors[1:] {
			followers = append(followers, c.Motor(m))
		}
		return NewMotorGroup(c.Motor(motors[0]), followers...)
	}
	return Drivebase{
		Left:            group(sideLeft),
		Right:           group(sideRight),
		LeftEncoder:     c.Encoder(sideLeft),
		RightEncoder:    c.Encoder(sideRight),
		LeftController:  c.PositionController(sideLeft),
		RightController: c.PositionController(sideRight),
	}
}

// Stop puts both sides into duty-cycle mode at zero output.
func (c *I2CController) Stop() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.duty = picobldc.PerMotorVal[float64]{}
	for s := range c.sides {
		c.sides[s].mode = DutyCycle
	}
}

func (c *I2CController) Loop(ctx context.Context, initDone *sync.WaitGroup) {
	c.log.Infof("HW: I2C loop started")
	for {
		err := c.loopUntilSomethingBadHappens(ctx, initDone)
		if ctx.Err() != nil {
			return
		}
		c.log.Errorf("HW: I2C FAILURE; TRYING TO RECOVER: %v", err)
		initDone = nil
		time.Sleep(100 * time.Millisecond)
	}
}

func (c *I2CController) loopUntilSomethingBadHappens(ctx context.Context, initDone *sync.WaitGroup) error {
	defer func() {
		if initDone != nil {
			initDone.Done()
		}
	}()

	pico, err := c.openPico()
	if err != nil {
		return errors.Wrap(err, "failed to open motor board")
	}
	defer func() {
		_ = pico.SetMotorSpeeds(picobldc.PerMotorVal[float64]{})
		_ = pico.Close()
	}()
	tracker := picobldc.NewDistanceTracker(pico)

	// The board's counters restarted with it, so the profile state is stale.
	c.lock.Lock()
	for s := range c.sides {
		c.sides[s].controller.Reset()
		pos := c.sides[s].position
		c.sides[s].newPosition = &pos
	}
	c.lock.Unlock()

	if initDone != nil {
		initDone.Done()
		initDone = nil
	}

	battery, _ := pico.(batteryMonitor)
	var lastBatteryReadingTime time.Time

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := c.runCycle(pico, tracker); err != nil {
			return err
		}
		if battery != nil && time.Since(lastBatteryReadingTime) > batteryLogInterval {
			if v, err := battery.BattVolts(); err == nil {
				c.log.Infof("HW: battery %.2fV", v)
			}
			lastBatteryReadingTime = time.Now()
		}
	}
}

const batteryLogInterval = 10 * time.Second

type batteryMonitor interface {
	BattVolts() (float32, error)
}

// runCycle reads the encoders, runs any smart-motion moves and writes the
// resulting motor outputs.
func (c *I2CController) runCycle(pico picobldc.Interface, tracker *picobldc.DistanceTracker) error {
	if err := tracker.Poll(); err != nil {
		return errors.Wrap(err, "failed to read encoders")
	}

	c.lock.Lock()
	for s := range c.sides {
		side := &c.sides[s]
		if side.newPosition != nil {
			for _, m := range sideMotors[s] {
				tracker.SetPosition(m, *side.newPosition/c.unitsPerRotation)
			}
			side.controller.Reset()
			side.newPosition = nil
		}
	}
	rotations := tracker.AccumulatedRotations()

	speeds := c.duty
	for s := range c.sides {
		side := &c.sides[s]
		leader := sideMotors[s][0]
		side.position = rotations[leader] * c.unitsPerRotation
		if side.mode != SmartMotion {
			continue
		}
		out := side.controller.Update(rotations[leader], c.period)
		for _, m := range sideMotors[s] {
			speeds[m] = out
		}
	}
	c.lock.Unlock()

	return errors.Wrap(pico.SetMotorSpeeds(speeds), "failed to set motor speeds")
}

type i2cMotor struct {
	c *I2CController
	m int
}

// Set on a side's leader drops that side back to duty-cycle control.
func (m *i2cMotor) Set(output float64) {
	m.c.lock.Lock()
	defer m.c.lock.Unlock()
	m.c.duty[m.m] = output
	s := sideOf(m.m)
	if sideMotors[s][0] == m.m {
		m.c.sides[s].mode = DutyCycle
	}
}

type i2cEncoder struct {
	c    *I2CController
	side int
}

func (e *i2cEncoder) Position() float64 {
	e.c.lock.Lock()
	defer e.c.lock.Unlock()
	return e.c.sides[e.side].position
}

// SetPosition takes effect immediately for readers; the board-side offset is
// applied on the next cycle.
func (e *i2cEncoder) SetPosition(position float64) {
	e.c.lock.Lock()
	defer e.c.lock.Unlock()
	side := &e.c.sides[e.side]
	side.position = position
	side.newPosition = &position
}

type i2cPositionController struct {
	c    *I2CController
	side int
}

func (p *i2cPositionController) SetReference(value float64, mode ControlMode) {
	p.c.lock.Lock()
	defer p.c.lock.Unlock()
	side := &p.c.sides[p.side]
	if mode == SmartMotion && side.mode != SmartMotion {
		side.controller.Reset()
	}
	side.mode = mode
	switch mode {
	case DutyCycle:
		for _, m := range sideMotors[p.side] {
			p.c.duty[m] = value
		}
	case SmartMotion:
		side.controller.SetTarget(value / p.c.unitsPerRotation)
	}
}
