package hardware

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision"
)

// DefaultSimFreeSpeed is how fast, in encoder units per second, a simulated
// side moves at full output.
const DefaultSimFreeSpeed = 60

// Sim is a deterministic stand-in for the robot.  Nothing moves until Step is
// called, either by the test or by the loop started by Start.
type Sim struct {
	FreeSpeed float64
	Period    time.Duration

	log log.Logger

	lock sync.Mutex

	LeftLeader, LeftFollower   *SimMotor
	RightLeader, RightFollower *SimMotor
	LeftEncoder, RightEncoder  *SimEncoder
	LeftController             *SimPositionController
	RightController            *SimPositionController
	IMU                        *SimIMU
	Vision                     *SimVision

	cancel   context.CancelFunc
	loopDone sync.WaitGroup
}

type simSide struct {
	mode      ControlMode
	reference float64
	position  float64
	leader    *SimMotor
	follower  *SimMotor
}

func NewSim(logger log.Logger) *Sim {
	s := &Sim{
		FreeSpeed: DefaultSimFreeSpeed,
		Period:    20 * time.Millisecond,
		log:       logger,
	}
	left, right := &simSide{}, &simSide{}
	s.LeftLeader = &SimMotor{lock: &s.lock, side: left, leader: true}
	s.LeftFollower = &SimMotor{lock: &s.lock, side: left}
	s.RightLeader = &SimMotor{lock: &s.lock, side: right, leader: true}
	s.RightFollower = &SimMotor{lock: &s.lock, side: right}
	left.leader, left.follower = s.LeftLeader, s.LeftFollower
	right.leader, right.follower = s.RightLeader, s.RightFollower
	s.LeftEncoder = &SimEncoder{lock: &s.lock, side: left}
	s.RightEncoder = &SimEncoder{lock: &s.lock, side: right}
	s.LeftController = &SimPositionController{lock: &s.lock, side: left}
	s.RightController = &SimPositionController{lock: &s.lock, side: right}
	s.IMU = &SimIMU{}
	s.Vision = &SimVision{}
	return s
}

func (s *Sim) Drivebase() Drivebase {
	return Drivebase{
		Left:            NewMotorGroup(s.LeftLeader, s.LeftFollower),
		Right:           NewMotorGroup(s.RightLeader, s.RightFollower),
		LeftEncoder:     s.LeftEncoder,
		RightEncoder:    s.RightEncoder,
		LeftController:  s.LeftController,
		RightController: s.RightController,
		IMU:             s.IMU,
		Vision:          s.Vision,
	}
}

// Step advances the simulated sides by dt.  A side in duty-cycle mode moves in
// proportion to its leader's output; a side in smart-motion mode heads for its
// reference at free speed.
func (s *Sim) Step(dt time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()

	maxMove := s.FreeSpeed * dt.Seconds()
	for _, side := range []*simSide{s.LeftLeader.side, s.RightLeader.side} {
		switch side.mode {
		case DutyCycle:
			side.position += side.leader.value * maxMove
		case SmartMotion:
			remaining := side.reference - side.position
			if math.Abs(remaining) <= maxMove {
				side.position = side.reference
				side.leader.value, side.follower.value = 0, 0
			} else {
				side.position += math.Copysign(maxMove, remaining)
				side.leader.value = math.Copysign(1, remaining)
				side.follower.value = side.leader.value
			}
		}
	}
}

// Settle completes any smart-motion move immediately.
func (s *Sim) Settle() {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, side := range []*simSide{s.LeftLeader.side, s.RightLeader.side} {
		if side.mode == SmartMotion {
			side.position = side.reference
		}
	}
}

func (s *Sim) Start(ctx context.Context) {
	s.log.Infof("SIM: Start")
	ctx, s.cancel = context.WithCancel(ctx)
	s.loopDone.Add(1)
	go func() {
		defer s.loopDone.Done()
		ticker := time.NewTicker(s.Period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Step(s.Period)
			}
		}
	}()
}

func (s *Sim) Shutdown() {
	s.log.Infof("SIM: Shutdown")
	s.LeftController.SetReference(0, DutyCycle)
	s.RightController.SetReference(0, DutyCycle)
	if s.cancel != nil {
		s.cancel()
	}
	s.loopDone.Wait()
}

var _ Interface = (*Sim)(nil)

type SimMotor struct {
	lock   *sync.Mutex
	side   *simSide
	leader bool
	value  float64
}

// Set on a side's leader drops that side back to duty-cycle control.
func (m *SimMotor) Set(output float64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.value = output
	if m.leader {
		m.side.mode = DutyCycle
	}
}

func (m *SimMotor) Value() float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.value
}

type SimEncoder struct {
	lock *sync.Mutex
	side *simSide
}

func (e *SimEncoder) Position() float64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.side.position
}

func (e *SimEncoder) SetPosition(position float64) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.side.position = position
}

type SimPositionController struct {
	lock *sync.Mutex
	side *simSide
}

func (c *SimPositionController) SetReference(value float64, mode ControlMode) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.side.mode = mode
	c.side.reference = value
	if mode == DutyCycle {
		c.side.leader.value = value
		c.side.follower.value = value
	}
}

func (c *SimPositionController) Mode() ControlMode {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.side.mode
}

func (c *SimPositionController) Reference() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.side.reference
}

type SimIMU struct {
	lock             sync.Mutex
	pitch, yaw, roll float64
}

func (i *SimIMU) Set(pitch, yaw, roll float64) {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.pitch, i.yaw, i.roll = pitch, yaw, roll
}

func (i *SimIMU) SetPitch(pitch float64) {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.pitch = pitch
}

func (i *SimIMU) Pitch() float64 {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.pitch
}

func (i *SimIMU) Yaw() float64 {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.yaw
}

func (i *SimIMU) Roll() float64 {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.roll
}

type SimVision struct {
	vision.Store
}
