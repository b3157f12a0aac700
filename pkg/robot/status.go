package robot

import (
	"fmt"

	"github.com/gwillem/ftcbot/pkg/drive"
)

// Status is a snapshot of the robot for telemetry.
type Status struct {
	Powers           drive.Powers
	LastCommand      drive.Command
	IntakePower      float64
	IntakeMode       IntakeMode
	LoaderPosition   float64
	ShooterTargetRPM float64
	ShooterRPM       float64
	ShooterReady     bool
	TurretPower      float64
	Preset           string
	Vision           string
}

// Status captures the current state.
func (r *Robot) Status() Status {
	s := Status{
		Powers:           r.drive.Powers(),
		LastCommand:      r.lastCommand,
		IntakePower:      r.intakePower,
		IntakeMode:       r.intakeMode,
		ShooterTargetRPM: r.shooterTarget,
		ShooterRPM:       r.ShooterRPM(),
		ShooterReady:     r.ShooterReady(),
		TurretPower:      r.turretPower,
		Preset:           r.drive.DirectionString(),
		Vision:           r.tracker.Status(),
	}
	if l, ok := r.loader.Get(); ok {
		s.LoaderPosition = l.Position()
	}
	return s
}

// Lines renders the status as telemetry key/value pairs.
func (s Status) Lines() [][2]string {
	shooter := "SPINNING UP"
	switch {
	case s.ShooterTargetRPM <= 0:
		shooter = "OFF"
	case s.ShooterReady:
		shooter = "READY"
	}
	return [][2]string{
		{"Drive Powers", s.Powers.String()},
		{"Drive Inputs", fmt.Sprintf("Axial: %.2f, Lateral: %.2f, Yaw: %.2f",
			s.LastCommand.Forward, s.LastCommand.Strafe, s.LastCommand.Rotate)},
		{"Direction", s.Preset},
		{"Intake", fmt.Sprintf("%s (%.2f)", s.IntakeMode, s.IntakePower)},
		{"Shooter", fmt.Sprintf("Target: %.0f RPM | Actual: %.0f RPM | %s", s.ShooterTargetRPM, s.ShooterRPM, shooter)},
		{"Turret", fmt.Sprintf("%.2f", s.TurretPower)},
		{"Loader", fmt.Sprintf("%.2f", s.LoaderPosition)},
		{"Vision", s.Vision},
	}
}
