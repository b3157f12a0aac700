// Package pca9685 drives motor ESCs and hobby servos from a PCA9685 PWM
// board on I2C.
package pca9685

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/googolgl/go-i2c"
	"github.com/googolgl/go-pca9685"
	log "github.com/sirupsen/logrus"

	"github.com/gwillem/ftcbot/pkg/hw"
)

var logger = log.WithFields(log.Fields{"pkg": "pca9685"})

const (
	DefaultAddress   = 0x40
	DefaultI2CDevice = "/dev/i2c-1"

	MaxChannels = 16
)

// Channel describes one PWM output.
type Channel struct {
	Channel  int     `json:"channel"`
	Inverted bool    `json:"inverted,omitempty"`
	MinPulse float64 `json:"min_pulse,omitempty"`
	MaxPulse float64 `json:"max_pulse,omitempty"`
}

// Config describes the board and what is wired to it. Motors are
// bidirectional ESCs (centre pulse = stop); servos are positional.
type Config struct {
	I2CDevice string             `json:"i2c_device"`
	Address   uint8              `json:"address"`
	Motors    map[string]Channel `json:"motors"`
	Servos    map[string]Channel `json:"servos"`
}

func DefaultConfig() Config {
	return Config{
		I2CDevice: DefaultI2CDevice,
		Address:   DefaultAddress,
		Motors: map[string]Channel{
			hw.FrontLeftMotor:  {Channel: 0},
			hw.FrontRightMotor: {Channel: 1},
			hw.BackLeftMotor:   {Channel: 2},
			hw.BackRightMotor:  {Channel: 3},
			hw.IntakeMotor:     {Channel: 4},
			hw.TurretMotor:     {Channel: 5},
		},
		Servos: map[string]Channel{
			hw.LoaderServo: {Channel: 8},
		},
	}
}

// Validate checks channel numbers and rejects double-booked channels.
func (c Config) Validate() error {
	used := make(map[int]string)
	check := func(name string, ch Channel) error {
		if ch.Channel < 0 || ch.Channel >= MaxChannels {
			return fmt.Errorf("%s: channel %d out of range", name, ch.Channel)
		}
		if other, ok := used[ch.Channel]; ok {
			return fmt.Errorf("%s: channel %d already used by %s", name, ch.Channel, other)
		}
		used[ch.Channel] = name
		return nil
	}
	for name, ch := range c.Motors {
		if err := check(name, ch); err != nil {
			return err
		}
	}
	for name, ch := range c.Servos {
		if err := check(name, ch); err != nil {
			return err
		}
	}
	return nil
}

// Board is an open PCA9685.
type Board struct {
	bus    io.Closer
	driver *pca9685.PCA9685
}

// Open connects to the board.
func Open(cfg Config) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bus, err := i2c.New(cfg.Address, cfg.I2CDevice)
	if err != nil {
		return nil, fmt.Errorf("open i2c %s at 0x%02x: %w", cfg.I2CDevice, cfg.Address, err)
	}
	driver, err := pca9685.New(bus, nil)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init pca9685: %w", err)
	}
	return &Board{bus: bus, driver: driver}, nil
}

// Close releases the I2C bus. Further calls are no-ops.
func (b *Board) Close() error {
	if b.bus == nil {
		return nil
	}
	err := b.bus.Close()
	b.bus = nil
	if err != nil {
		return fmt.Errorf("close i2c: %w", err)
	}
	return nil
}

func (b *Board) channel(ch Channel) *pca9685.Servo {
	minPulse, maxPulse := float32(ch.MinPulse), float32(ch.MaxPulse)
	if minPulse == 0 {
		minPulse = float32(pca9685.ServoMinPulseDef)
	}
	if maxPulse == 0 {
		maxPulse = float32(pca9685.ServoMaxPulseDef)
	}
	return b.driver.ServoNew(ch.Channel, &pca9685.ServOptions{
		AcRange:  pca9685.ServoRangeDef,
		MinPulse: minPulse,
		MaxPulse: maxPulse,
	})
}

// Register adds every configured motor and servo to m. Motors are set to
// neutral first so the ESCs arm.
func (b *Board) Register(m *hw.Map, cfg Config) error {
	for name, ch := range cfg.Motors {
		mot := &Motor{out: b.channel(ch), inverted: ch.Inverted, dir: hw.Forward}
		if err := mot.SetPower(0); err != nil {
			return fmt.Errorf("centre %s: %w", name, err)
		}
		m.Register(name, mot)
		logger.Infof("motor %s on channel %d", name, ch.Channel)
	}
	for name, ch := range cfg.Servos {
		s := &Servo{out: b.channel(ch), inverted: ch.Inverted}
		m.Register(name, s)
		logger.Infof("servo %s on channel %d", name, ch.Channel)
	}
	return nil
}

type output interface {
	Fraction(v float32) error
}

// Motor is a bidirectional ESC on one channel.
type Motor struct {
	mu       sync.Mutex
	out      output
	inverted bool
	dir      hw.Direction
	power    float64
}

var _ hw.Motor = (*Motor)(nil)

// PowerToFraction maps power in [-1, 1] to a pulse fraction in [0, 1] with
// 0.5 as neutral.
func PowerToFraction(power float64, dir hw.Direction, inverted bool) float64 {
	p := math.Max(-1, math.Min(1, power)) * dir.Sign()
	if inverted {
		p = -p
	}
	return 0.5 + p/2
}

func (m *Motor) SetPower(p float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = math.Max(-1, math.Min(1, p))
	if err := m.out.Fraction(float32(PowerToFraction(p, m.dir, m.inverted))); err != nil {
		return fmt.Errorf("set power %.2f: %w", p, err)
	}
	m.power = p
	return nil
}

func (m *Motor) Power() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.power
}

func (m *Motor) SetDirection(d hw.Direction) error {
	m.mu.Lock()
	m.dir = d
	p := m.power
	m.mu.Unlock()
	return m.SetPower(p)
}

// Servo is a positional servo on one channel.
type Servo struct {
	mu       sync.Mutex
	out      output
	inverted bool
	pos      float64
}

var _ hw.Servo = (*Servo)(nil)

func (s *Servo) SetPosition(pos float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos = math.Max(0, math.Min(1, pos))
	f := pos
	if s.inverted {
		f = 1 - f
	}
	if err := s.out.Fraction(float32(f)); err != nil {
		return fmt.Errorf("set position %.2f: %w", pos, err)
	}
	s.pos = pos
	return nil
}

func (s *Servo) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
