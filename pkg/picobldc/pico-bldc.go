package picobldc

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/io/i2c"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
)

const (
	PicoAddr = 0x42

	// Full-scale motor command understood by the firmware.
	MotorFullRange = 0x1000

	// Travel counters tick 256 times per motor revolution.
	TravelCountsPerRev = 256
)

// Motor indexes, in the order used by PerMotorVal.
const (
	FrontLeft = iota
	FrontRight
	BackLeft
	BackRight
	NumMotors
)

// PerMotorVal holds one value per drive motor, indexed by FrontLeft etc.
type PerMotorVal[T any] [NumMotors]T

type Register byte

const (
	RegCtrl Register = iota
	RegStatus
	RegWatchdogTimeout
	RegFaultCount

	RegMot0V
	RegMot1V
	RegMot2V
	RegMot3V

	RegMot0Calib
	RegMot1Calib
	RegMot2Calib
	RegMot3Calib

	RegBattV // LSB=4mV
	RegCurrent
	RegPower

	RegTemperature // LSB = 0.01C

	RegMot0Travel // Wrapping 16-bit travel counters.
	RegMot1Travel
	RegMot2Travel
	RegMot3Travel
)

const (
	BattVLSB = 0.004
)

const (
	RegCtrlEnableI2CControl uint16 = 1 << iota
	RegCtrlRun
	RegCtrlDoCalib
	RegCtrlReset
	RegCtrlWatchdogEnable
)

type StatusFlag uint16

const (
	RegStatusFault StatusFlag = 1 << iota
	RegStatusCalibDone
	RegStatusWatchdogExpired
)

// The board's channels are wired in a different order to our motor indexes.
var motorRegs = PerMotorVal[Register]{
	FrontLeft:  RegMot2V,
	FrontRight: RegMot1V,
	BackLeft:   RegMot3V,
	BackRight:  RegMot0V,
}

var travelRegs = PerMotorVal[Register]{
	FrontLeft:  RegMot2Travel,
	FrontRight: RegMot1Travel,
	BackLeft:   RegMot3Travel,
	BackRight:  RegMot0Travel,
}

type Interface interface {
	// SetMotorSpeeds takes one output fraction in [-1, 1] per motor.
	SetMotorSpeeds(speeds PerMotorVal[float64]) error
	RawDistancesTraveled() (PerMotorVal[int16], error)
	Close() error
}

type device interface {
	Write(buf []byte) error
	ReadReg(reg byte, buf []byte) error
	Close() error
}

type PicoBLDC struct {
	bus *i2c.Devfs
	dev device
	log log.Logger

	lastConfigWord  uint16
	lastConfigTime  time.Time
	watchdogEnabled bool
}

var _ Interface = (*PicoBLDC)(nil)

func New(busDevice string, logger log.Logger) (*PicoBLDC, error) {
	bus := &i2c.Devfs{Dev: busDevice}
	dev, err := i2c.Open(bus, PicoAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Pico-BLDC on %s", busDevice)
	}
	return &PicoBLDC{
		bus: bus,
		dev: dev,
		log: logger,
	}, nil
}

func (p *PicoBLDC) Reset() error {
	return p.maybeConfigure(true, false)
}

func (p *PicoBLDC) SetWatchdog(timeout time.Duration) error {
	if timeout == 0 {
		p.watchdogEnabled = false
		return p.maybeConfigure(false, false)
	}

	ms := timeout.Milliseconds()
	if ms > math.MaxUint16 {
		ms = math.MaxUint16
	}
	if err := p.writeReg(RegWatchdogTimeout, uint16(ms)); err != nil {
		return err
	}

	p.watchdogEnabled = true
	return p.maybeConfigure(false, false)
}

func (p *PicoBLDC) SetMotorSpeeds(speeds PerMotorVal[float64]) error {
	if err := p.maybeConfigure(false, true); err != nil {
		return err
	}
	for m, s := range speeds {
		if err := p.writeReg(motorRegs[m], uint16(ScaleMotorOutput(s))); err != nil {
			return err
		}
	}
	return nil
}

func (p *PicoBLDC) RawDistancesTraveled() (raw PerMotorVal[int16], err error) {
	for m, reg := range travelRegs {
		v, err := p.readReg(reg)
		if err != nil {
			return raw, err
		}
		raw[m] = int16(v)
	}
	return raw, nil
}

func (p *PicoBLDC) BattVolts() (float32, error) {
	raw, err := p.readReg(RegBattV)
	if err != nil {
		return 0, err
	}
	return float32(raw) * BattVLSB, nil
}

func (p *PicoBLDC) Status() (StatusFlag, error) {
	raw, err := p.readReg(RegStatus)
	if err != nil {
		return 0, err
	}
	return StatusFlag(raw), nil
}

func (p *PicoBLDC) Close() error {
	_ = p.Reset()
	return p.dev.Close()
}

// ScaleMotorOutput converts an output fraction to the board's signed command,
// saturating at the int16 limits.
func ScaleMotorOutput(value float64) int16 {
	multiplied := value * MotorFullRange
	if multiplied <= math.MinInt16 {
		return math.MinInt16
	}
	if multiplied >= math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(multiplied)
}

func (p *PicoBLDC) writeWithRetries(data []byte) error {
	var err error
	for tries := 0; tries < 20; tries++ {
		err = p.dev.Write(data)
		if err == nil {
			if tries > 0 {
				p.log.Infof("PICO: write succeeded after %d retries", tries)
			}
			return nil
		}
		p.log.Warnf("PICO: failed to write: %v", err)
		time.Sleep(1 * time.Millisecond)
		if p.bus == nil {
			continue
		}
		_ = p.dev.Close()
		dev, openErr := i2c.Open(p.bus, PicoAddr)
		if openErr != nil {
			continue
		}
		p.dev = dev
	}
	return errors.Wrap(err, "failed to write to Pico-BLDC after retries")
}

func (p *PicoBLDC) maybeConfigure(resetMotorSpeeds bool, enableMotors bool) error {
	var configWord uint16 = RegCtrlEnableI2CControl
	if resetMotorSpeeds {
		configWord |= RegCtrlReset
	}
	if enableMotors {
		configWord |= RegCtrlRun
	}
	if p.watchdogEnabled {
		configWord |= RegCtrlWatchdogEnable
	}

	if configWord == p.lastConfigWord && time.Since(p.lastConfigTime) < 100*time.Millisecond {
		return nil
	}

	if p.lastConfigWord == 0 {
		calib, err := p.readReg(RegMot3Calib)
		if err != nil {
			return err
		}
		if calib == 0 {
			// Refuse to spin uncalibrated motors; calibration needs the robot on blocks.
			return errors.New("Pico-BLDC is not calibrated")
		}
	}

	if err := p.writeReg(RegCtrl, configWord); err != nil {
		return err
	}

	p.lastConfigTime = time.Now()
	p.lastConfigWord = configWord & (^RegCtrlReset) /* Reset flag is not persistent */
	return nil
}

func (p *PicoBLDC) writeReg(reg Register, value uint16) error {
	return p.writeWithRetries([]byte{byte(reg), byte(value >> 8), byte(value)})
}

func (p *PicoBLDC) readReg(reg Register) (uint16, error) {
	var buf [2]byte
	if err := p.dev.ReadReg(byte(reg), buf[:]); err != nil {
		return 0, errors.Wrapf(err, "failed to read Pico-BLDC register %d", reg)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}
