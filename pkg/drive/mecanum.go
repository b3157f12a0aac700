// Package drive provides mecanum kinematics, motor direction presets and the
// drive subsystem that applies them to four wheel motors.
package drive

import (
	"fmt"
	"math"
)

// Wheel identifies one of the four mecanum wheels.
type Wheel int

const (
	FrontLeft Wheel = iota
	FrontRight
	BackLeft
	BackRight
)

// AllWheels returns the wheels in FL, FR, BL, BR order.
func AllWheels() []Wheel {
	return []Wheel{FrontLeft, FrontRight, BackLeft, BackRight}
}

func (w Wheel) String() string {
	switch w {
	case FrontLeft:
		return "FL"
	case FrontRight:
		return "FR"
	case BackLeft:
		return "BL"
	case BackRight:
		return "BR"
	default:
		return fmt.Sprintf("Wheel(%d)", int(w))
	}
}

// Command is the desired motion for one control cycle.
type Command struct {
	Forward float64
	Strafe  float64
	Rotate  float64
}

// Scale multiplies every axis by k.
func (c Command) Scale(k float64) Command {
	return Command{Forward: c.Forward * k, Strafe: c.Strafe * k, Rotate: c.Rotate * k}
}

// IsZero reports whether the command requests no motion.
func (c Command) IsZero() bool {
	return c.Forward == 0 && c.Strafe == 0 && c.Rotate == 0
}

// Powers holds one power per wheel.
type Powers struct {
	FrontLeft  float64
	FrontRight float64
	BackLeft   float64
	BackRight  float64
}

// Get returns the power for wheel w.
func (p Powers) Get(w Wheel) float64 {
	switch w {
	case FrontLeft:
		return p.FrontLeft
	case FrontRight:
		return p.FrontRight
	case BackLeft:
		return p.BackLeft
	case BackRight:
		return p.BackRight
	}
	return 0
}

// Array returns the powers in FL, FR, BL, BR order.
func (p Powers) Array() [4]float64 {
	return [4]float64{p.FrontLeft, p.FrontRight, p.BackLeft, p.BackRight}
}

// Max returns the largest absolute wheel power.
func (p Powers) Max() float64 {
	m := math.Abs(p.FrontLeft)
	m = math.Max(m, math.Abs(p.FrontRight))
	m = math.Max(m, math.Abs(p.BackLeft))
	m = math.Max(m, math.Abs(p.BackRight))
	return m
}

// Scale multiplies every wheel power by k.
func (p Powers) Scale(k float64) Powers {
	return Powers{
		FrontLeft:  p.FrontLeft * k,
		FrontRight: p.FrontRight * k,
		BackLeft:   p.BackLeft * k,
		BackRight:  p.BackRight * k,
	}
}

func (p Powers) String() string {
	return fmt.Sprintf("FL: %.2f, FR: %.2f, BL: %.2f, BR: %.2f",
		p.FrontLeft, p.FrontRight, p.BackLeft, p.BackRight)
}

// Mix applies the mecanum mixing matrix without normalization.
func Mix(c Command) Powers {
	return Powers{
		FrontLeft:  c.Forward + c.Strafe + c.Rotate,
		FrontRight: c.Forward - c.Strafe - c.Rotate,
		BackLeft:   c.Forward - c.Strafe + c.Rotate,
		BackRight:  c.Forward + c.Strafe - c.Rotate,
	}
}

// Normalize scales p down so that no wheel exceeds magnitude 1. Powers that
// are already within range are returned unchanged.
func Normalize(p Powers) Powers {
	m := p.Max()
	if m <= 1.0 {
		return p
	}
	return p.Scale(1 / m)
}

// Mecanum returns the normalized wheel powers for c.
func Mecanum(c Command) Powers {
	return Normalize(Mix(c))
}

// Clamp limits v to [-1, 1].
func Clamp(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
