package drive

import (
	"errors"
	"fmt"

	"github.com/gwillem/ftcbot/pkg/hw"
)

// ErrNoEncoders is returned by encoder operations when a wheel motor has no
// encoder.
var ErrNoEncoders = errors.New("drive motors have no encoders")

// Motors holds the four wheel motors.
type Motors [4]hw.Motor

// Subsystem owns the wheel motors and applies mecanum powers to them.
type Subsystem struct {
	motors Motors
	preset Preset
	last   Powers
}

// NewSubsystem creates a drive subsystem and applies preset to the motors.
// All four motors are required.
func NewSubsystem(motors Motors, preset Preset) (*Subsystem, error) {
	for _, w := range AllWheels() {
		if motors[w] == nil {
			return nil, fmt.Errorf("new drive subsystem: missing %s motor", w)
		}
	}
	s := &Subsystem{motors: motors, preset: preset}
	if err := s.applyPreset(); err != nil {
		return nil, fmt.Errorf("new drive subsystem: %w", err)
	}
	return s, nil
}

// Drive mixes c into wheel powers and applies them.
func (s *Subsystem) Drive(c Command) error {
	return s.SetPowers(Mecanum(c))
}

// Stop sets all wheel powers to zero.
func (s *Subsystem) Stop() error {
	return s.SetPowers(Powers{})
}

// SetPowers writes p to the motors. Every motor is written even if an
// earlier one fails.
func (s *Subsystem) SetPowers(p Powers) error {
	var errs []error
	for _, w := range AllWheels() {
		if err := s.motors[w].SetPower(p.Get(w)); err != nil {
			errs = append(errs, fmt.Errorf("set %s power: %w", w, err))
		}
	}
	s.last = s.readPowers()
	return errors.Join(errs...)
}

// Powers returns the powers reported by the motors after the last write.
func (s *Subsystem) Powers() Powers {
	return s.last
}

func (s *Subsystem) readPowers() Powers {
	return Powers{
		FrontLeft:  s.motors[FrontLeft].Power(),
		FrontRight: s.motors[FrontRight].Power(),
		BackLeft:   s.motors[BackLeft].Power(),
		BackRight:  s.motors[BackRight].Power(),
	}
}

// Preset returns the active direction preset.
func (s *Subsystem) Preset() Preset {
	return s.preset
}

// SetPreset selects and applies a direction preset.
func (s *Subsystem) SetPreset(p Preset) error {
	s.preset = NewPreset(int(p))
	return s.applyPreset()
}

// CyclePreset moves the preset by delta, wrapping around.
func (s *Subsystem) CyclePreset(delta int) error {
	return s.SetPreset(s.preset.Cycle(delta))
}

// DirectionString describes the active preset.
func (s *Subsystem) DirectionString() string {
	return s.preset.String()
}

func (s *Subsystem) applyPreset() error {
	pol := s.preset.Polarities()
	var errs []error
	for _, w := range AllWheels() {
		if err := s.motors[w].SetDirection(pol[w]); err != nil {
			errs = append(errs, fmt.Errorf("set %s direction: %w", w, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Subsystem) encoders() ([4]hw.EncoderMotor, error) {
	var out [4]hw.EncoderMotor
	for _, w := range AllWheels() {
		em, ok := s.motors[w].(hw.EncoderMotor)
		if !ok {
			return out, fmt.Errorf("%s: %w", w, ErrNoEncoders)
		}
		out[w] = em
	}
	return out, nil
}

// HasEncoders reports whether all wheel motors support encoder moves.
func (s *Subsystem) HasEncoders() bool {
	_, err := s.encoders()
	return err == nil
}

// ResetEncoders zeroes all wheel encoders.
func (s *Subsystem) ResetEncoders() error {
	ems, err := s.encoders()
	if err != nil {
		return err
	}
	var errs []error
	for _, em := range ems {
		errs = append(errs, em.ResetEncoder())
	}
	return errors.Join(errs...)
}

// SetTargetPositions sets per-wheel targets (FL, FR, BL, BR) and switches
// the motors to run-to-position.
func (s *Subsystem) SetTargetPositions(targets [4]int) error {
	ems, err := s.encoders()
	if err != nil {
		return err
	}
	var errs []error
	for i, em := range ems {
		if err := em.SetTargetPosition(targets[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, em.RunToPosition())
	}
	return errors.Join(errs...)
}

// SetAllPower applies the same power to every wheel. Used with
// run-to-position, where the sign is chosen by the controller.
func (s *Subsystem) SetAllPower(power float64) error {
	return s.SetPowers(Powers{power, power, power, power})
}

// Busy reports whether any wheel is still moving to its target.
func (s *Subsystem) Busy() bool {
	ems, err := s.encoders()
	if err != nil {
		return false
	}
	for _, em := range ems {
		if em.Busy() {
			return true
		}
	}
	return false
}

// RunUsingEncoders returns the motors to plain power control.
func (s *Subsystem) RunUsingEncoders() error {
	ems, err := s.encoders()
	if err != nil {
		return err
	}
	var errs []error
	for _, em := range ems {
		errs = append(errs, em.RunUsingEncoder())
	}
	return errors.Join(errs...)
}

// Positions returns the encoder positions (FL, FR, BL, BR).
func (s *Subsystem) Positions() ([4]int, error) {
	var out [4]int
	ems, err := s.encoders()
	if err != nil {
		return out, err
	}
	for i, em := range ems {
		out[i] = em.Position()
	}
	return out, nil
}
