package opmode

import (
	"errors"

	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/robot"
)

// TeleOp is driver control.
//
//	left stick        drive and strafe
//	right stick X     rotate
//	bumpers           hold intake (left out, right in)
//	Y                 cycle intake mode
//	X                 hold to spin up and fire, release to stop
//	B                 toggle turret auto-aim
//	d-pad left/right  turret
//	d-pad up/down     raise/lower loader
//	start/back        next/previous drive direction preset
//
// With shooter.auto_rpm set, X follows the solver while the tag is in view
// and holds the last solved RPM when it drops out. An impossible shot
// spins the flywheel down and keeps the loader lowered.
type TeleOp struct {
	name string
	slow bool
	r    *robot.Robot
	mult float64

	intakeMode Button
	shoot      Button
	nextPreset Button
	prevPreset Button
	autoAim    Toggle
	shot       rpmHold
	errs       errorLog
}

func NewTeleOp(name string, slow bool) *TeleOp {
	return &TeleOp{name: name, slow: slow, errs: errorLog{mode: name}}
}

func (o *TeleOp) Name() string { return o.name }

func (o *TeleOp) Init(r *robot.Robot, t *Telemetry) error {
	o.r = r
	cfg := r.Config().Drive
	o.mult = cfg.SpeedNormal
	if o.slow {
		o.mult = cfg.SpeedSlow
	}
	t.Add("Status", "Initialized")
	t.Add("Speed", "%.1fx", o.mult)
	return nil
}

func (o *TeleOp) Loop(in Input, t *Telemetry) bool {
	r, gp := o.r, in.Gamepad
	cfg := r.Config()
	obs := r.UpdateVision()
	var errs []error

	cmd := drive.Command{Forward: -gp.LeftStickY, Strafe: gp.LeftStickX, Rotate: gp.RightStickX}
	errs = append(errs, r.Drive(cmd.Scale(o.mult)))

	if o.intakeMode.Update(gp.Y) {
		errs = append(errs, r.CycleIntakeMode())
	}
	switch {
	case gp.LeftBumper:
		errs = append(errs, r.SetIntakePower(-cfg.Intake.Power))
	case gp.RightBumper:
		errs = append(errs, r.SetIntakePower(cfg.Intake.Power))
	default:
		errs = append(errs, r.SetIntakeMode(r.IntakeMode()))
	}

	if o.shoot.Update(gp.X) {
		o.shot.Reset()
	}
	switch {
	case o.shoot.Held():
		rpm := cfg.Shooter.TargetRPM
		if cfg.Shooter.AutoRPM {
			rpm = o.shot.Update(r, obs)
		}
		errs = append(errs, r.SetShooterRPM(rpm))
		if r.ShooterReady() {
			errs = append(errs, r.RaiseLoader())
		}
	case o.shoot.Released():
		errs = append(errs, r.SetShooterRPM(0), r.LowerLoader())
	case gp.DpadUp:
		errs = append(errs, r.RaiseLoader())
	case gp.DpadDown:
		errs = append(errs, r.LowerLoader())
	}

	if o.autoAim.Update(gp.B) {
		_, err := r.AimTurret(obs, in.Dt)
		errs = append(errs, err)
	} else {
		power := 0.0
		if gp.DpadLeft {
			power = -cfg.Turret.Power
		} else if gp.DpadRight {
			power = cfg.Turret.Power
		}
		errs = append(errs, r.SetTurretPower(power))
	}

	if o.nextPreset.Update(gp.Start) {
		errs = append(errs, r.CyclePreset(1))
	}
	if o.prevPreset.Update(gp.Back) {
		errs = append(errs, r.CyclePreset(-1))
	}
	o.errs.check(errors.Join(errs...))

	t.AddStatus(r.Status())
	t.Add("Speed", "%.1fx", o.mult)
	t.Add("Auto Aim", "%v", o.autoAim.On())
	return false
}

func (o *TeleOp) Stop(*robot.Robot) {}
