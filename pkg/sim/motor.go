// Package sim is a software plant for the robot: simulated motors, servos
// and an AprilTag camera driven by a single mecanum chassis model.
//
// Devices are safe for concurrent use so the plant can be stepped from its
// own goroutine while the control loop runs in another.
package sim

import (
	"math"
	"sync"

	"github.com/gwillem/ftcbot/pkg/hw"
)

type runMode int

const (
	runWithoutEncoder runMode = iota
	runUsingEncoder
	runToPosition
)

// PositionTolerance is how close (ticks) a RUN_TO_POSITION move must get
// before the motor stops being busy.
const PositionTolerance = 10

// Motor is a DC motor with an encoder.
type Motor struct {
	mu    sync.Mutex
	power float64
	dir   hw.Direction
	mount hw.Direction
	mode  runMode

	position float64
	target   int
	maxTPS   float64
	output   float64
}

var _ hw.EncoderMotor = (*Motor)(nil)

// NewMotor creates a motor. mount is the polarity that makes positive
// commanded power move the mechanism forward; maxTPS is the encoder speed
// at full power.
func NewMotor(mount hw.Direction, maxTPS float64) *Motor {
	return &Motor{dir: hw.Forward, mount: mount, maxTPS: maxTPS}
}

func (m *Motor) SetPower(p float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.power = math.Max(-1, math.Min(1, p))
	return nil
}

func (m *Motor) Power() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.power
}

func (m *Motor) SetDirection(d hw.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir = d
	return nil
}

// Direction returns the commanded direction.
func (m *Motor) Direction() hw.Direction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir
}

func (m *Motor) Position() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(math.Round(m.position))
}

func (m *Motor) ResetEncoder() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = 0
	m.mode = runWithoutEncoder
	return nil
}

func (m *Motor) SetTargetPosition(ticks int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.target = ticks
	return nil
}

func (m *Motor) RunToPosition() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = runToPosition
	return nil
}

func (m *Motor) RunUsingEncoder() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = runUsingEncoder
	return nil
}

func (m *Motor) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode == runToPosition && !m.arrived()
}

func (m *Motor) arrived() bool {
	return math.Abs(float64(m.target)-m.position) <= PositionTolerance
}

// Output is the physical drive the motor applies to the mechanism, in
// [-1, 1], after the last Step. Positive moves the mechanism forward.
func (m *Motor) Output() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output
}

// effective returns the signed power in the commanded frame.
func (m *Motor) effective() float64 {
	if m.mode != runToPosition {
		return m.power
	}
	if m.arrived() {
		return 0
	}
	return math.Copysign(math.Abs(m.power), float64(m.target)-m.position)
}

// Step advances the encoder by dt seconds.
func (m *Motor) Step(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.effective()
	m.position += p * m.maxTPS * dt
	if m.mode == runToPosition {
		// Do not overshoot the target within one step.
		if (p > 0 && m.position > float64(m.target)) || (p < 0 && m.position < float64(m.target)) {
			m.position = float64(m.target)
		}
	}
	m.output = p * m.dir.Sign() * m.mount.Sign()
}

// VelocityMotor is a flywheel motor with first-order spin-up.
type VelocityMotor struct {
	mu       sync.Mutex
	power    float64
	dir      hw.Direction
	target   float64 // ticks per second
	velocity float64
	maxTPS   float64
	tau      float64 // seconds
}

var _ hw.VelocityMotor = (*VelocityMotor)(nil)

// NewVelocityMotor creates a flywheel reaching 63% of a step change in tau
// seconds.
func NewVelocityMotor(maxTPS, tau float64) *VelocityMotor {
	return &VelocityMotor{dir: hw.Forward, maxTPS: maxTPS, tau: tau}
}

func (v *VelocityMotor) SetPower(p float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.power = math.Max(-1, math.Min(1, p))
	v.target = v.power * v.maxTPS
	return nil
}

func (v *VelocityMotor) Power() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.power
}

func (v *VelocityMotor) SetDirection(d hw.Direction) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dir = d
	return nil
}

func (v *VelocityMotor) SetVelocity(tps float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.target = math.Max(-v.maxTPS, math.Min(v.maxTPS, tps))
	if v.maxTPS > 0 {
		v.power = v.target / v.maxTPS
	}
	return nil
}

func (v *VelocityMotor) Velocity() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.velocity
}

func (v *VelocityMotor) Step(dt float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.tau <= 0 {
		v.velocity = v.target
		return
	}
	v.velocity += (v.target - v.velocity) * (1 - math.Exp(-dt/v.tau))
}

// Servo is a positional servo that moves instantly.
type Servo struct {
	mu  sync.Mutex
	pos float64
}

var _ hw.Servo = (*Servo)(nil)

func NewServo(initial float64) *Servo {
	s := &Servo{}
	s.SetPosition(initial)
	return s
}

func (s *Servo) SetPosition(pos float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if math.IsNaN(pos) {
		return nil
	}
	s.pos = math.Max(0, math.Min(1, pos))
	return nil
}

func (s *Servo) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
