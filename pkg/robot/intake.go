package robot

import "fmt"

// IntakeMode is the toggled intake state used when no bumper is held.
type IntakeMode int

const (
	IntakeRegular IntakeMode = iota
	IntakeReverse
	IntakeOff
)

// Next cycles REGULAR -> REVERSE -> OFF -> REGULAR.
func (m IntakeMode) Next() IntakeMode {
	switch m {
	case IntakeRegular:
		return IntakeReverse
	case IntakeReverse:
		return IntakeOff
	default:
		return IntakeRegular
	}
}

// Power returns the motor power for the mode, scaled by limit.
func (m IntakeMode) Power(limit float64) float64 {
	switch m {
	case IntakeRegular:
		return limit
	case IntakeReverse:
		return -limit
	default:
		return 0
	}
}

func (m IntakeMode) String() string {
	switch m {
	case IntakeRegular:
		return "REGULAR"
	case IntakeReverse:
		return "REVERSE"
	case IntakeOff:
		return "OFF"
	}
	return fmt.Sprintf("IntakeMode(%d)", int(m))
}
