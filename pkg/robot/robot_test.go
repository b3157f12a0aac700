package robot

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gwillem/ftcbot/pkg/approach"
	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/hw"
	"github.com/gwillem/ftcbot/pkg/launcher"
	"github.com/gwillem/ftcbot/pkg/sim"
	"github.com/gwillem/ftcbot/pkg/vision"
)

func newSimRobot(t *testing.T) (*Robot, *sim.World) {
	t.Helper()
	w := sim.NewWorld(sim.DefaultConfig())
	r, err := New(w.Map(), Default())
	if err != nil {
		t.Fatal(err)
	}
	return r, w
}

func TestNewBindsEverything(t *testing.T) {
	r, _ := newSimRobot(t)
	for _, c := range r.Capabilities() {
		if !c.Bound {
			t.Errorf("%s not bound: %v", c.Name, c.Err)
		}
	}
}

func TestNewDriveOnly(t *testing.T) {
	w := sim.NewWorld(sim.DefaultConfig())
	m := hw.NewMap()
	for i, name := range hw.DriveMotors() {
		m.Register(name, w.Wheel(drive.Wheel(i)))
	}
	r, err := New(m, Default())
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range r.Capabilities() {
		if c.Bound || !errors.Is(c.Err, hw.ErrNotFound) {
			t.Errorf("%s: bound=%v err=%v", c.Name, c.Bound, c.Err)
		}
	}

	// Missing hardware is a no-op, not an error.
	if err := r.SetShooterRPM(3000); err != nil {
		t.Error(err)
	}
	if err := r.RaiseLoader(); err != nil {
		t.Error(err)
	}
	if err := r.SetTurretPower(1); err != nil {
		t.Error(err)
	}
	if r.ShooterReady() {
		t.Error("shooter ready without a shooter")
	}
	if obs := r.UpdateVision(); obs.Acquired {
		t.Error("acquired without a camera")
	}
	if s := r.Status(); s.Vision != "Limelight: Not connected" {
		t.Errorf("Vision status = %q", s.Vision)
	}
}

func TestNewMissingDriveMotor(t *testing.T) {
	w := sim.NewWorld(sim.DefaultConfig())
	m := w.Map()
	m.Register(hw.BackRightMotor, "unplugged")
	_, err := New(m, Default())
	if !errors.Is(err, hw.ErrWrongType) {
		t.Errorf("err = %v, want ErrWrongType", err)
	}

	if _, err := New(hw.NewMap(), Default()); !errors.Is(err, hw.ErrNotFound) {
		t.Errorf("empty map err = %v, want ErrNotFound", err)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	w := sim.NewWorld(sim.DefaultConfig())
	cfg := Default()
	cfg.Drive.Preset = 99
	if _, err := New(w.Map(), cfg); err == nil {
		t.Error("expected config error")
	}
}

func TestDriveAndStop(t *testing.T) {
	r, w := newSimRobot(t)
	if err := r.Drive(drive.Command{Forward: 1, Strafe: 1}); err != nil {
		t.Fatal(err)
	}
	want := drive.Powers{FrontLeft: 1, FrontRight: 0, BackLeft: 0, BackRight: 1}
	if got := r.Status().Powers; got != want {
		t.Errorf("Powers = %v, want %v", got, want)
	}
	if got := w.Wheel(drive.FrontLeft).Power(); got != 1 {
		t.Errorf("FL motor power = %v", got)
	}

	r.SetIntakePower(1)
	r.SetTurretPower(0.5)
	r.SetShooterRPM(3000)
	if err := r.Stop(); err != nil {
		t.Fatal(err)
	}
	s := r.Status()
	if s.Powers != (drive.Powers{}) || s.IntakePower != 0 || s.TurretPower != 0 || s.ShooterTargetRPM != 0 {
		t.Errorf("after Stop: %+v", s)
	}
	if !s.LastCommand.IsZero() {
		t.Errorf("LastCommand after Stop = %+v", s.LastCommand)
	}
}

func TestCyclePreset(t *testing.T) {
	r, w := newSimRobot(t)
	start := r.Preset()
	if err := r.CyclePreset(1); err != nil {
		t.Fatal(err)
	}
	next := start.Cycle(1)
	if r.Preset() != next {
		t.Errorf("Preset = %v, want %v", r.Preset(), next)
	}
	for _, wh := range drive.AllWheels() {
		if got := w.Wheel(wh).Direction(); got != next.Polarities().Get(wh) {
			t.Errorf("%s direction = %v, want %v", wh, got, next.Polarities().Get(wh))
		}
	}
	r.CyclePreset(-1)
	if r.Preset() != start {
		t.Errorf("Preset after -1 = %v, want %v", r.Preset(), start)
	}
}

func TestIntake(t *testing.T) {
	r, w := newSimRobot(t)
	if r.IntakeMode() != IntakeOff {
		t.Errorf("initial mode = %v, want OFF", r.IntakeMode())
	}
	wantModes := []IntakeMode{IntakeRegular, IntakeReverse, IntakeOff}
	wantPowers := []float64{1, -1, 0}
	for i := range wantModes {
		if err := r.CycleIntakeMode(); err != nil {
			t.Fatal(err)
		}
		if r.IntakeMode() != wantModes[i] || w.Intake().Power() != wantPowers[i] {
			t.Errorf("step %d: mode %v power %v", i, r.IntakeMode(), w.Intake().Power())
		}
	}

	r.SetIntakePower(3)
	if got := w.Intake().Power(); got != 1 {
		t.Errorf("clamped intake power = %v, want 1", got)
	}
}

func TestShooterSpinUp(t *testing.T) {
	r, w := newSimRobot(t)
	if err := r.SetShooterRPM(3000); err != nil {
		t.Fatal(err)
	}
	if r.ShooterReady() {
		t.Fatal("ready before spin-up")
	}
	for i := 0; i < 500 && !r.ShooterReady(); i++ {
		w.Step(0.02)
	}
	if !r.ShooterReady() {
		t.Fatalf("never reached speed, at %.0f RPM", r.ShooterRPM())
	}
	if rpm := r.ShooterRPM(); rpm < 2940 || rpm > 3000.5 {
		t.Errorf("ShooterRPM = %v", rpm)
	}

	r.SetShooterRPM(-5)
	if r.ShooterTargetRPM() != 0 || r.ShooterReady() {
		t.Error("negative RPM should spin down and never be ready")
	}

	r.SetShooterRPM(1e6)
	if r.ShooterTargetRPM() != Default().Shooter.MaxRPM {
		t.Errorf("target not clamped: %v", r.ShooterTargetRPM())
	}
}

func TestLoader(t *testing.T) {
	r, w := newSimRobot(t)
	r.RaiseLoader()
	if w.Loader().Position() != 1 {
		t.Errorf("raised position = %v", w.Loader().Position())
	}
	r.LowerLoader()
	if w.Loader().Position() != 0 {
		t.Errorf("lowered position = %v", w.Loader().Position())
	}
}

func TestAimTurret(t *testing.T) {
	r, w := newSimRobot(t)
	dt := 20 * time.Millisecond
	obs := vision.Observation{Acquired: true, Yaw: 10, YawValid: true}
	aimed, err := r.AimTurret(obs, dt)
	if err != nil || aimed {
		t.Fatalf("aimed=%v err=%v", aimed, err)
	}
	if got := w.Turret().Power(); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("turret power = %v, want 0.2", got)
	}

	obs.Yaw = -100
	r.AimTurret(obs, dt)
	if got := w.Turret().Power(); got != -1 {
		t.Errorf("turret power = %v, want -1 (limit)", got)
	}

	obs.Yaw = 0.5
	if aimed, _ := r.AimTurret(obs, dt); !aimed || w.Turret().Power() != 0 {
		t.Errorf("inside tolerance: aimed=%v power=%v", aimed, w.Turret().Power())
	}

	r.SetTurretPower(0.5)
	if aimed, _ := r.AimTurret(vision.Observation{}, dt); aimed || w.Turret().Power() != 0 {
		t.Error("turret should stop without a target")
	}
}

func TestRequiredRPM(t *testing.T) {
	r, _ := newSimRobot(t)
	if got := r.RequiredRPM(vision.Observation{Distance: 2}); got != 0 {
		t.Errorf("RPM without target = %v", got)
	}
	obs := vision.Observation{Acquired: true, Distance: 2, Height: 0.5}
	cfg := Default().Launcher
	want := launcher.Physics{Angle: cfg.AngleRadians(), WheelRadius: cfg.WheelRadius, Correction: cfg.Correction}.RequiredRPM(2, 0.5)
	if got := r.RequiredRPM(obs); math.Abs(got-want) > 1e-9 || got <= 0 {
		t.Errorf("RequiredRPM = %v, want %v", got, want)
	}
	obs.Height = 5
	if got := r.RequiredRPM(obs); got != 0 {
		t.Errorf("impossible shot RPM = %v", got)
	}
}

func TestMoveToAprilTag(t *testing.T) {
	r, _ := newSimRobot(t)
	dt := 20 * time.Millisecond
	r.Drive(drive.Command{Forward: 0.5})

	res, err := r.MoveToAprilTag(vision.Observation{}, dt)
	if err != nil {
		t.Fatal(err)
	}
	if res.State != approach.Searching || r.Status().Powers != (drive.Powers{}) {
		t.Errorf("searching should stop the drive: %+v %v", res, r.Status().Powers)
	}

	res, _ = r.MoveToAprilTag(vision.Observation{Acquired: true, Forward: 1, YawValid: true}, dt)
	if res.State != approach.Approaching || res.Command.Forward != 1 {
		t.Errorf("approach result = %+v", res)
	}
	if r.Status().LastCommand != res.Command {
		t.Errorf("LastCommand = %+v, want %+v", r.Status().LastCommand, res.Command)
	}
}

func TestStatusLines(t *testing.T) {
	r, _ := newSimRobot(t)
	r.Drive(drive.Command{Forward: 0.5})
	lines := r.Status().Lines()
	got := make(map[string]string)
	for _, l := range lines {
		got[l[0]] = l[1]
	}
	if got["Drive Powers"] != "FL: 0.50, FR: 0.50, BL: 0.50, BR: 0.50" {
		t.Errorf("Drive Powers = %q", got["Drive Powers"])
	}
	if !strings.HasPrefix(got["Direction"], "FL_FR_FLIP") {
		t.Errorf("Direction = %q", got["Direction"])
	}
	if !strings.HasSuffix(got["Shooter"], "OFF") {
		t.Errorf("Shooter = %q", got["Shooter"])
	}
}

func TestReload(t *testing.T) {
	r, w := newSimRobot(t)
	cfg := Default()
	cfg.Drive.Preset = 0
	cfg.Launcher.Strategy = launcher.StrategyTable
	cfg.Vision.TargetTag = 7
	if err := r.Reload(cfg); err != nil {
		t.Fatal(err)
	}
	if r.Preset() != 0 {
		t.Errorf("Preset = %v, want 0", r.Preset())
	}
	if w.Wheel(drive.FrontLeft).Direction() != hw.Reverse {
		t.Error("preset 0 should leave FL reversed")
	}
	if got := r.RequiredRPM(vision.Observation{Acquired: true, Distance: 2}); got != 3500 {
		t.Errorf("table RPM = %v, want 3500", got)
	}
	if r.Vision().TargetTag() != 7 {
		t.Errorf("target tag = %d", r.Vision().TargetTag())
	}

	bad := Default()
	bad.LoopHz = 0
	if err := r.Reload(bad); err == nil {
		t.Error("invalid reload accepted")
	}
	if r.Config().LoopHz != cfg.LoopHz {
		t.Error("failed reload changed the config")
	}
}
