// Package launcher computes flywheel speeds for hitting a goal.
//
// Two solvers are provided behind the Solver interface: a projectile-motion
// model with an empirical correction factor, and a lookup table of measured
// (distance, RPM) pairs. Both return 0 when no shot should be taken.
package launcher

import "math"

// Gravity in m/s².
const Gravity = 9.820302

// ReadyFraction is the share of the target speed the flywheel must reach
// before a ball is fed.
const ReadyFraction = 0.98

// Solver maps a goal position to a required flywheel RPM. A result of 0
// means the shot is impossible and the flywheel should not be fired.
type Solver interface {
	RequiredRPM(distance, height float64) float64
}

// LaunchVelocity returns the exit velocity (m/s) needed to reach a goal at
// horizontal distance and vertical height (positive = above the launcher)
// when launching at angle radians. It returns 0 for impossible shots.
func LaunchVelocity(distance, height, angle float64) float64 {
	if distance <= 0 {
		return 0
	}
	cosA := math.Cos(angle)
	numerator := Gravity * distance * distance
	denominator := 2 * cosA * cosA * (distance*math.Tan(angle) - height)
	if denominator <= 0 {
		return 0
	}
	return math.Sqrt(numerator / denominator)
}

// VelocityToRPM converts a rim speed (m/s) on a wheel of radius metres to RPM.
func VelocityToRPM(velocity, wheelRadius float64) float64 {
	if wheelRadius <= 0 {
		return 0
	}
	omega := velocity / wheelRadius
	return omega * 60 / (2 * math.Pi)
}

// RPMToTicksPerSecond converts RPM to encoder ticks per second.
func RPMToTicksPerSecond(rpm, ticksPerRev float64) float64 {
	return rpm * ticksPerRev / 60.0
}

// TicksPerSecondToRPM converts encoder ticks per second to RPM.
func TicksPerSecondToRPM(ticksPerSecond, ticksPerRev float64) float64 {
	if ticksPerRev <= 0 {
		return 0
	}
	return ticksPerSecond * 60.0 / ticksPerRev
}

// IsAtTargetRPM reports whether current is within ReadyFraction of target.
// A target of zero or less is never ready.
func IsAtTargetRPM(current, target float64) bool {
	if target <= 0 {
		return false
	}
	return current >= target*ReadyFraction
}

// Physics solves projectile motion for a fixed launch angle.
type Physics struct {
	Angle       float64 // radians
	WheelRadius float64 // metres
	// Correction scales the ideal velocity to cover wheel slip, drag and
	// ball compression. Raise it when shots fall short.
	Correction float64
}

// RequiredRPM implements Solver.
func (p Physics) RequiredRPM(distance, height float64) float64 {
	v := LaunchVelocity(distance, height, p.Angle)
	if v == 0 {
		return 0
	}
	correction := p.Correction
	if correction <= 0 {
		correction = 1
	}
	return VelocityToRPM(v*correction, p.WheelRadius)
}
