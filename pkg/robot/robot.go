// Package robot assembles the competition robot from a hardware map: the
// mecanum drive, intake, shooter, turret, loader and camera.
package robot

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/felixge/pidctrl"
	log "github.com/sirupsen/logrus"

	"github.com/gwillem/ftcbot/pkg/approach"
	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/hw"
	"github.com/gwillem/ftcbot/pkg/launcher"
	"github.com/gwillem/ftcbot/pkg/vision"
)

var logger = log.WithFields(log.Fields{"pkg": "robot"})

// Robot owns every subsystem. It is not safe for concurrent use; a single
// control loop drives it.
type Robot struct {
	cfg Config

	drive   *drive.Subsystem
	intake  hw.Binding[hw.Motor]
	shooter hw.Binding[hw.VelocityMotor]
	turret  hw.Binding[hw.Motor]
	loader  hw.Binding[hw.Servo]
	camera  hw.Binding[vision.Source]

	tracker  *vision.Tracker
	approach *approach.Controller
	solver   launcher.Solver
	aim      *pidctrl.PIDController

	lastCommand   drive.Command
	intakeMode    IntakeMode
	intakePower   float64
	shooterTarget float64
	turretPower   float64
}

// New builds the robot from m. The drive motors are required; every other
// device is optional and only logged when missing.
func New(m *hw.Map, cfg Config) (*Robot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var motors drive.Motors
	for i, name := range hw.DriveMotors() {
		b := hw.Bind[hw.Motor](m, name)
		mot, ok := b.Get()
		if !ok {
			return nil, fmt.Errorf("drive motor: %w", b.Err())
		}
		motors[i] = mot
	}
	d, err := drive.NewSubsystem(motors, drive.NewPreset(cfg.Drive.Preset))
	if err != nil {
		return nil, err
	}

	r := &Robot{
		cfg:        cfg,
		drive:      d,
		intake:     hw.Bind[hw.Motor](m, hw.IntakeMotor),
		shooter:    hw.Bind[hw.VelocityMotor](m, hw.ShooterMotor),
		turret:     hw.Bind[hw.Motor](m, hw.TurretMotor),
		loader:     hw.Bind[hw.Servo](m, hw.LoaderServo),
		camera:     hw.Bind[vision.Source](m, hw.Camera),
		intakeMode: IntakeOff,
	}
	for _, c := range r.Capabilities() {
		if !c.Bound {
			logger.WithField("device", c.Name).Warnf("disabled: %v", c.Err)
		}
	}

	var src vision.Source
	if cam, ok := r.camera.Get(); ok {
		src = cam
	}
	r.tracker = vision.NewTracker(src, cfg.Vision)
	r.approach = approach.New(cfg.Approach)
	if r.solver, err = launcher.NewSolver(cfg.Launcher); err != nil {
		return nil, err
	}
	r.aim = newAimPID(cfg.Turret)

	if err := r.Stop(); err != nil {
		logger.Warnf("initial stop: %v", err)
	}
	logger.Infof("robot ready, drive preset %s", d.DirectionString())
	return r, nil
}

func newAimPID(cfg TurretConfig) *pidctrl.PIDController {
	pid := pidctrl.NewPIDController(cfg.AimGain, 0, 0)
	pid.Set(0)
	pid.SetOutputLimits(-cfg.Power, cfg.Power)
	return pid
}

// Reload swaps in new tunables without rebuilding the hardware.
func (r *Robot) Reload(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	solver, err := launcher.NewSolver(cfg.Launcher)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if cfg.Drive.Preset != r.cfg.Drive.Preset {
		if err := r.drive.SetPreset(drive.NewPreset(cfg.Drive.Preset)); err != nil {
			return fmt.Errorf("reload: %w", err)
		}
	}
	r.solver = solver
	r.approach.Configure(cfg.Approach)
	r.tracker.SetTargetTag(cfg.Vision.TargetTag)
	r.tracker.SetStandoff(cfg.Vision.Standoff)
	if cfg.Vision.Pipeline != r.tracker.Pipeline() {
		if err := r.tracker.SetPipeline(cfg.Vision.Pipeline); err != nil {
			logger.Warnf("reload: %v", err)
		}
	}
	r.aim = newAimPID(cfg.Turret)
	r.cfg = cfg
	logger.Info("configuration reloaded")
	return nil
}

func (r *Robot) Config() Config { return r.cfg }

// Chassis exposes the drive subsystem for encoder moves.
func (r *Robot) Chassis() *drive.Subsystem { return r.drive }

// Drive applies a mecanum command and records it for telemetry.
func (r *Robot) Drive(c drive.Command) error {
	r.lastCommand = c
	return r.drive.Drive(c)
}

// DriveWithGamepad drives from already scaled stick values.
func (r *Robot) DriveWithGamepad(forward, strafe, rotate float64) error {
	return r.Drive(drive.Command{Forward: forward, Strafe: strafe, Rotate: rotate})
}

// StopDrive zeroes the wheels only.
func (r *Robot) StopDrive() error {
	r.lastCommand = drive.Command{}
	return r.drive.Stop()
}

// Stop zeroes every actuator that can move the robot or a mechanism.
func (r *Robot) Stop() error {
	return errors.Join(
		r.StopDrive(),
		r.SetIntakePower(0),
		r.SetShooterRPM(0),
		r.SetTurretPower(0),
	)
}

// CyclePreset moves the drive direction preset by delta.
func (r *Robot) CyclePreset(delta int) error {
	if err := r.drive.CyclePreset(delta); err != nil {
		return err
	}
	logger.Infof("drive preset %s", r.drive.DirectionString())
	return nil
}

func (r *Robot) Preset() drive.Preset { return r.drive.Preset() }

// SetIntakePower sets the intake power, clamped to the configured limit.
func (r *Robot) SetIntakePower(p float64) error {
	mot, ok := r.intake.Get()
	if !ok {
		return nil
	}
	limit := r.cfg.Intake.Power
	p = math.Max(-limit, math.Min(limit, p))
	if err := mot.SetPower(p); err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	r.intakePower = p
	return nil
}

func (r *Robot) IntakeMode() IntakeMode { return r.intakeMode }

// SetIntakeMode records mode and applies its power.
func (r *Robot) SetIntakeMode(mode IntakeMode) error {
	r.intakeMode = mode
	return r.SetIntakePower(mode.Power(r.cfg.Intake.Power))
}

// CycleIntakeMode advances to the next intake mode.
func (r *Robot) CycleIntakeMode() error {
	return r.SetIntakeMode(r.intakeMode.Next())
}

func (r *Robot) RaiseLoader() error { return r.setLoader(r.cfg.Loader.Raised) }

func (r *Robot) LowerLoader() error { return r.setLoader(r.cfg.Loader.Lowered) }

func (r *Robot) setLoader(pos float64) error {
	s, ok := r.loader.Get()
	if !ok {
		return nil
	}
	if err := s.SetPosition(pos); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}

// SetShooterRPM spins the flywheel to rpm. Zero or less spins it down.
func (r *Robot) SetShooterRPM(rpm float64) error {
	if rpm < 0 || math.IsNaN(rpm) {
		rpm = 0
	}
	rpm = math.Min(rpm, r.cfg.Shooter.MaxRPM)
	r.shooterTarget = rpm
	mot, ok := r.shooter.Get()
	if !ok {
		return nil
	}
	tps := launcher.RPMToTicksPerSecond(rpm, r.cfg.Shooter.TicksPerRev)
	if err := mot.SetVelocity(tps); err != nil {
		return fmt.Errorf("shooter: %w", err)
	}
	return nil
}

// ShooterRPM returns the measured flywheel speed.
func (r *Robot) ShooterRPM() float64 {
	mot, ok := r.shooter.Get()
	if !ok {
		return 0
	}
	return launcher.TicksPerSecondToRPM(mot.Velocity(), r.cfg.Shooter.TicksPerRev)
}

func (r *Robot) ShooterTargetRPM() float64 { return r.shooterTarget }

// ShooterReady reports whether the flywheel is at speed for its target.
func (r *Robot) ShooterReady() bool {
	return launcher.IsAtTargetRPM(r.ShooterRPM(), r.shooterTarget)
}

// SetTurretPower sets the turret power, clamped to the configured limit.
func (r *Robot) SetTurretPower(p float64) error {
	mot, ok := r.turret.Get()
	if !ok {
		return nil
	}
	limit := r.cfg.Turret.Power
	p = math.Max(-limit, math.Min(limit, p))
	if err := mot.SetPower(p); err != nil {
		return fmt.Errorf("turret: %w", err)
	}
	r.turretPower = p
	return nil
}

// AimTurret turns the turret toward the target and reports whether it is
// within the aim tolerance. Without a usable angle the turret stops.
func (r *Robot) AimTurret(obs vision.Observation, dt time.Duration) (bool, error) {
	if !obs.Acquired || !obs.YawValid {
		return false, r.SetTurretPower(0)
	}
	if math.Abs(obs.Yaw) <= r.cfg.Turret.AimTolerance {
		return true, r.SetTurretPower(0)
	}
	return false, r.SetTurretPower(r.aim.UpdateDuration(-obs.Yaw, dt))
}

// UpdateVision reads the camera and returns the latest observation.
func (r *Robot) UpdateVision() vision.Observation {
	return r.tracker.Update()
}

func (r *Robot) Vision() *vision.Tracker { return r.tracker }

// MoveToAprilTag steps the approach controller and applies its command.
// The drive stops while no target is acquired.
func (r *Robot) MoveToAprilTag(obs vision.Observation, dt time.Duration) (approach.Result, error) {
	res := r.approach.Step(obs, dt)
	if res.State == approach.Searching {
		return res, r.StopDrive()
	}
	return res, r.Drive(res.Command)
}

func (r *Robot) Approach() *approach.Controller { return r.approach }

// RequiredRPM returns the flywheel speed for the observed target, or 0 when
// there is no target or no possible shot.
func (r *Robot) RequiredRPM(obs vision.Observation) float64 {
	if !obs.Acquired {
		return 0
	}
	return r.solver.RequiredRPM(obs.Distance, obs.Height)
}

// Capability reports whether an optional device was bound.
type Capability struct {
	Name  string
	Bound bool
	Err   error
}

// Capabilities lists the optional devices in a fixed order.
func (r *Robot) Capabilities() []Capability {
	return []Capability{
		{r.intake.Name(), r.intake.Bound(), r.intake.Err()},
		{r.shooter.Name(), r.shooter.Bound(), r.shooter.Err()},
		{r.turret.Name(), r.turret.Bound(), r.turret.Err()},
		{r.loader.Name(), r.loader.Bound(), r.loader.Err()},
		{r.camera.Name(), r.camera.Bound(), r.camera.Err()},
	}
}
