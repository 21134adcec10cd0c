package bno08x

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/angle"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
)

const DefaultSerialDevice = "/dev/ttyAMA0"

const ReportFrequency = 100
const ReportInterval = time.Second / ReportFrequency

const packetLen = 19

var packetHeader = []byte{0xaa, 0xaa}

// IMUReport is one UART-RVC frame.  Angles are in hundredths of a degree.
type IMUReport struct {
	Time   time.Time
	Index  uint8
	Yaw    int16
	Pitch  int16
	Roll   int16
	XAccel int16
	YAccel int16
	ZAccel int16
}

func (i IMUReport) String() string {
	return fmt.Sprintf("[%02x] Y:%7.2f P:%7.2f R:%7.2f X:%7.2f Y:%7.2f Z:%7.2f",
		i.Index, i.YawDegrees(), i.PitchDegrees(), i.RollDegrees(),
		float64(i.XAccel)/100.0, float64(i.YAccel)/100.0, float64(i.ZAccel)/100.0)
}

func (i IMUReport) YawDegrees() float64 {
	return float64(i.Yaw) / 100.0
}

func (i IMUReport) PitchDegrees() float64 {
	return float64(i.Pitch) / 100.0
}

func (i IMUReport) RollDegrees() float64 {
	return float64(i.Roll) / 100.0
}

var (
	ErrBadHeader   = errors.New("bad packet header")
	ErrBadChecksum = errors.New("bad packet checksum")
)

// ParsePacket decodes a complete packet, header included.
func ParsePacket(buf []byte) (IMUReport, error) {
	var report IMUReport
	if len(buf) < packetLen {
		return report, io.ErrUnexpectedEOF
	}
	if !bytes.Equal(buf[:2], packetHeader) {
		return report, ErrBadHeader
	}
	var checksum uint8
	for _, b := range buf[2 : packetLen-1] {
		checksum += b
	}
	if buf[packetLen-1] != checksum {
		return report, errors.Wrapf(ErrBadChecksum, "%x != %x", buf[packetLen-1], checksum)
	}
	report.Index = buf[2]
	report.Yaw = int16(binary.LittleEndian.Uint16(buf[3:5]))
	report.Pitch = int16(binary.LittleEndian.Uint16(buf[5:7]))
	report.Roll = int16(binary.LittleEndian.Uint16(buf[7:9]))
	report.XAccel = int16(binary.LittleEndian.Uint16(buf[9:11]))
	report.YAccel = int16(binary.LittleEndian.Uint16(buf[11:13]))
	report.ZAccel = int16(binary.LittleEndian.Uint16(buf[13:15]))
	return report, nil
}

// BNO08X reads the sensor's UART-RVC stream in the background and serves the
// latest attitude without blocking.  Yaw is unwrapped so that it accumulates
// across full turns, matching what the drive code expects of a gyro.
type BNO08X struct {
	device string
	log    log.Logger

	lock       sync.Mutex
	lastReport IMUReport
	yaw        angle.Unwrapper
	yawTotal   float64
	yawOffset  float64
}

func New(device string, logger log.Logger) *BNO08X {
	if device == "" {
		device = DefaultSerialDevice
	}
	return &BNO08X{
		device: device,
		log:    logger,
	}
}

func (b *BNO08X) CurrentReport() IMUReport {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.lastReport
}

func (b *BNO08X) Pitch() float64 {
	return b.CurrentReport().PitchDegrees()
}

func (b *BNO08X) Roll() float64 {
	return b.CurrentReport().RollDegrees()
}

// Yaw returns the accumulated heading in degrees.
func (b *BNO08X) Yaw() float64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.yawTotal - b.yawOffset
}

// ZeroYaw makes the current heading read as 0.
func (b *BNO08X) ZeroYaw() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.yawOffset = b.yawTotal
}

func (b *BNO08X) LoopReadingReports(ctx context.Context) {
	for ctx.Err() == nil {
		err := b.openAndLoop(ctx)
		if ctx.Err() != nil {
			return
		}
		b.log.Warnf("BNO08X: loop stopped; will retry: %v", err)
		time.Sleep(100 * time.Millisecond)
	}
}

func (b *BNO08X) openAndLoop(ctx context.Context) error {
	mode := &serial.Mode{
		BaudRate: 115200,
	}
	s, err := serial.Open(b.device, mode)
	if err != nil {
		return errors.Wrapf(err, "failed to open serial port %s", b.device)
	}
	defer s.Close()
	return b.readPackets(ctx, s)
}

func (b *BNO08X) readPackets(ctx context.Context, r io.Reader) error {
	br := bufio.NewReader(r)
	buf := make([]byte, packetLen)
resync:
	b.log.Debugf("BNO08X: resync...")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		hdr, err := br.Peek(2)
		if err != nil {
			return errors.Wrap(err, "failed to read from serial")
		}
		if bytes.Equal(hdr, packetHeader) {
			break
		}
		if _, err := br.Discard(1); err != nil {
			return errors.Wrap(err, "failed to read from serial")
		}
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := io.ReadFull(br, buf); err != nil {
			return errors.Wrap(err, "failed to read from serial")
		}
		report, err := ParsePacket(buf)
		if err != nil {
			b.log.Debugf("BNO08X: dropping packet: %v", err)
			goto resync
		}
		report.Time = time.Now()
		b.setReport(report)
	}
}

func (b *BNO08X) setReport(report IMUReport) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.lastReport = report
	b.yawTotal = b.yaw.Update(report.YawDegrees())
}
