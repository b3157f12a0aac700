// Package feetech drives positional servos (loader, gates) on a Feetech STS
// serial bus.
package feetech

import (
	"context"
	"fmt"
	"sync"
	"time"

	ft "github.com/hipsterbrown/feetech-servo/feetech"
	log "github.com/sirupsen/logrus"

	"github.com/gwillem/ftcbot/pkg/hw"
)

var logger = log.WithFields(log.Fields{"pkg": "feetech"})

const (
	BaudRate = 1_000_000
	// WriteTimeout bounds a single position write from the control loop.
	WriteTimeout = 50 * time.Millisecond
)

// Config describes one servo bus. Calibration is either inline or read
// from CalibrationFile.
type Config struct {
	Port            string      `json:"port"`
	Calibration     Calibration `json:"calibration,omitempty"`
	CalibrationFile string      `json:"calibration_file,omitempty"`
}

// IsCalibrated returns true if the bus has calibration data.
func (c Config) IsCalibrated() bool {
	return len(c.Calibration) > 0 || c.CalibrationFile != ""
}

// ResolveCalibration loads CalibrationFile when no inline calibration is set.
func (c *Config) ResolveCalibration() error {
	if len(c.Calibration) > 0 || c.CalibrationFile == "" {
		return nil
	}
	cal, err := LoadCalibration(c.CalibrationFile)
	if err != nil {
		return fmt.Errorf("bus %s: %w", c.Port, err)
	}
	if len(cal) == 0 {
		return fmt.Errorf("bus %s: %s has no servos", c.Port, c.CalibrationFile)
	}
	c.Calibration = cal
	return nil
}

// Bus is an open servo bus with a sync-write group over all calibrated servos.
type Bus struct {
	bus         *ft.Bus
	group       *ft.ServoGroup
	calibration Calibration

	mu   sync.Mutex
	last map[string]float64
}

// Open opens the serial bus described by cfg.
func Open(cfg Config) (*Bus, error) {
	bus, err := ft.NewBus(ft.BusConfig{
		Port:     cfg.Port,
		BaudRate: BaudRate,
		Protocol: ft.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus %s: %w", cfg.Port, err)
	}

	group := ft.NewServoGroupByIDs(bus, cfg.Calibration.IDs()...)

	return &Bus{
		bus:         bus,
		group:       group,
		calibration: cfg.Calibration,
		last:        make(map[string]float64),
	}, nil
}

// Close closes the bus connection.
func (b *Bus) Close() error {
	return b.bus.Close()
}

// Enable enables torque on all servos and reads back where they are, so
// Position reports the real pose before the first write.
func (b *Bus) Enable(ctx context.Context) error {
	if err := b.group.EnableAll(ctx); err != nil {
		return err
	}
	positions, err := b.ReadPositions(ctx)
	if err != nil {
		return err
	}
	b.seed(positions)
	return nil
}

func (b *Bus) seed(positions map[string]float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for name, pos := range positions {
		b.last[name] = pos
	}
}

// Disable disables torque on all servos.
func (b *Bus) Disable(ctx context.Context) error {
	return b.group.DisableAll(ctx)
}

// ReadPositions reads current positions from all servos, normalized to [0, 1].
func (b *Bus) ReadPositions(ctx context.Context) (map[string]float64, error) {
	raw, err := b.group.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	positions := make(map[string]float64, len(raw))
	for id, r := range raw {
		name, cal, ok := b.calibration.ByID(id)
		if !ok {
			continue
		}
		positions[name] = cal.Normalize(r)
	}
	return positions, nil
}

// WritePositions writes normalized target positions.
func (b *Bus) WritePositions(ctx context.Context, positions map[string]float64) error {
	raw := make(ft.PositionMap, len(positions))
	for name, pos := range positions {
		cal, ok := b.calibration[name]
		if !ok {
			continue
		}
		raw[cal.ID] = cal.Denormalize(pos)
	}

	if err := b.group.SetPositions(ctx, raw); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}

	b.seed(positions)
	return nil
}

// Servo returns a single calibrated servo as a hardware capability.
func (b *Bus) Servo(name string) (*Servo, error) {
	if _, ok := b.calibration[name]; !ok {
		return nil, fmt.Errorf("servo %s: %w", name, hw.ErrNotFound)
	}
	return &Servo{bus: b, name: name}, nil
}

// Register adds every calibrated servo to m.
func (b *Bus) Register(m *hw.Map) {
	for _, name := range b.calibration.Names() {
		s, _ := b.Servo(name)
		m.Register(name, s)
		logger.Debugf("registered servo %s (id %d)", name, b.calibration[name].ID)
	}
}

// Servo is one servo on a Bus.
type Servo struct {
	bus  *Bus
	name string
}

var _ hw.Servo = (*Servo)(nil)

func (s *Servo) SetPosition(pos float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
	defer cancel()
	return s.bus.WritePositions(ctx, map[string]float64{s.name: pos})
}

// Position returns the last commanded position, or the one read back when
// the bus was enabled.
func (s *Servo) Position() float64 {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	return s.bus.last[s.name]
}
