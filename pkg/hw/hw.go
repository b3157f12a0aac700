// Package hw defines the hardware capabilities the robot code is written
// against. Backends (simulator, PWM board, servo bus) implement them.
package hw

// Direction is the polarity applied to a motor's commanded power.
type Direction int

const (
	Forward Direction = 1
	Reverse Direction = -1
)

// Invert returns the opposite direction.
func (d Direction) Invert() Direction {
	if d == Reverse {
		return Forward
	}
	return Reverse
}

// Sign returns +1 or -1.
func (d Direction) Sign() float64 {
	if d == Reverse {
		return -1
	}
	return 1
}

func (d Direction) String() string {
	if d == Reverse {
		return "REVERSE"
	}
	return "FORWARD"
}

// Motor is an open-loop motor driven by power in the range [-1, 1].
type Motor interface {
	SetPower(power float64) error
	Power() float64
	SetDirection(d Direction) error
}

// EncoderMotor is a motor with a position encoder and a run-to-position mode.
type EncoderMotor interface {
	Motor
	Position() int
	ResetEncoder() error
	SetTargetPosition(ticks int) error
	RunToPosition() error
	RunUsingEncoder() error
	Busy() bool
}

// VelocityMotor is a motor with closed-loop velocity control in encoder
// ticks per second.
type VelocityMotor interface {
	Motor
	SetVelocity(ticksPerSecond float64) error
	Velocity() float64
}

// Servo is a positional servo. Positions are in the range [0, 1].
type Servo interface {
	SetPosition(pos float64) error
	Position() float64
}
