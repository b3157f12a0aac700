package drive

import "math"

// Geometry describes the drive train for encoder-based moves.
type Geometry struct {
	TicksPerRev         float64 `json:"ticks_per_rev"`
	WheelDiameterInches float64 `json:"wheel_diameter_inches"`
	// StrafeCorrection compensates for mecanum strafing covering less
	// ground per wheel revolution than driving straight.
	StrafeCorrection float64 `json:"strafe_correction"`
}

// DefaultGeometry is a 312 RPM Yellow Jacket motor on 104 mm mecanum wheels.
func DefaultGeometry() Geometry {
	return Geometry{
		TicksPerRev:         537.7,
		WheelDiameterInches: 4.094,
		StrafeCorrection:    1.41,
	}
}

// TicksPerInch returns encoder ticks per inch of wheel travel.
func (g Geometry) TicksPerInch() float64 {
	if g.WheelDiameterInches <= 0 {
		return 0
	}
	return g.TicksPerRev / (g.WheelDiameterInches * math.Pi)
}

// DriveTargets returns per-wheel targets for driving inches forward
// (negative inches drive backward).
func (g Geometry) DriveTargets(inches float64) [4]int {
	t := int(math.Round(inches * g.TicksPerInch()))
	return [4]int{t, t, t, t}
}

// StrafeTargets returns per-wheel targets for strafing inches to the right
// (negative inches strafe left). FL and BR turn with the strafe, FR and BL
// against it.
func (g Geometry) StrafeTargets(inches float64) [4]int {
	correction := g.StrafeCorrection
	if correction <= 0 {
		correction = 1
	}
	t := int(math.Round(inches * g.TicksPerInch() * correction))
	return [4]int{t, -t, -t, t}
}
