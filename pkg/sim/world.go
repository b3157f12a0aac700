package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/hw"
)

// Pose is the robot position in the tag's frame. The tag sits at the
// origin facing +Z. X grows to the robot's right when it faces the tag and
// Z is the distance in front of the tag. Heading is in degrees, 0 facing
// the tag, positive turning right.
type Pose struct {
	X, Z    float64
	Heading float64
}

// Config describes the simulated robot and field.
type Config struct {
	MaxSpeed         float64 // m/s at full forward power
	StrafeEfficiency float64 // fraction of MaxSpeed reached strafing
	MaxTurnRate      float64 // deg/s at full rotate power
	DriveTPS         float64 // drive encoder ticks/s at full power
	ShooterTPS       float64 // flywheel ticks/s at full power
	ShooterTau       float64 // flywheel time constant, seconds
	TagID            int
	TagHeight        float64 // goal height above the camera, metres
	// Mount is the wheel polarity that drives the chassis forward. The
	// robot only drives straight with a matching direction preset.
	Mount drive.Polarities
	Start Pose
}

func DefaultConfig() Config {
	return Config{
		MaxSpeed:         1.5,
		StrafeEfficiency: 0.8,
		MaxTurnRate:      180,
		DriveTPS:         2800,
		ShooterTPS:       2800,
		ShooterTau:       0.3,
		TagID:            20,
		TagHeight:        0.75,
		Mount:            drive.DefaultPreset.Polarities(),
		Start:            Pose{X: 0.3, Z: 2.0, Heading: 5},
	}
}

// World is the simulated robot on the field.
type World struct {
	mu   sync.Mutex
	cfg  Config
	pose Pose

	wheels  [4]*Motor
	intake  *Motor
	shooter *VelocityMotor
	turret  *Motor
	loader  *Servo
	camera  *Camera
}

func NewWorld(cfg Config) *World {
	w := &World{cfg: cfg, pose: cfg.Start}
	for _, wh := range drive.AllWheels() {
		w.wheels[wh] = NewMotor(cfg.Mount.Get(wh), cfg.DriveTPS)
	}
	w.intake = NewMotor(hw.Forward, cfg.DriveTPS)
	w.shooter = NewVelocityMotor(cfg.ShooterTPS, cfg.ShooterTau)
	w.turret = NewMotor(hw.Forward, cfg.DriveTPS)
	w.loader = NewServo(0)
	w.camera = &Camera{world: w, connected: true}
	return w
}

// Map registers every simulated device under its hardware name.
func (w *World) Map() *hw.Map {
	m := hw.NewMap()
	names := hw.DriveMotors()
	for i, wh := range drive.AllWheels() {
		m.Register(names[i], w.wheels[wh])
	}
	m.Register(hw.IntakeMotor, w.intake)
	m.Register(hw.ShooterMotor, w.shooter)
	m.Register(hw.TurretMotor, w.turret)
	m.Register(hw.LoaderServo, w.loader)
	m.Register(hw.Camera, w.camera)
	return m
}

func (w *World) Wheel(wh drive.Wheel) *Motor { return w.wheels[wh] }
func (w *World) Intake() *Motor              { return w.intake }
func (w *World) Shooter() *VelocityMotor     { return w.shooter }
func (w *World) Turret() *Motor              { return w.turret }
func (w *World) Loader() *Servo              { return w.loader }
func (w *World) Camera() *Camera             { return w.camera }

func (w *World) Pose() Pose {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pose
}

func (w *World) SetPose(p Pose) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pose = p
}

// Step advances the plant by dt seconds.
func (w *World) Step(dt float64) {
	var out [4]float64
	for _, wh := range drive.AllWheels() {
		w.wheels[wh].Step(dt)
		out[wh] = w.wheels[wh].Output()
	}
	w.intake.Step(dt)
	w.turret.Step(dt)
	w.shooter.Step(dt)

	fl, fr, bl, br := out[drive.FrontLeft], out[drive.FrontRight], out[drive.BackLeft], out[drive.BackRight]
	forward := (fl + fr + bl + br) / 4 * w.cfg.MaxSpeed
	strafe := (fl - fr - bl + br) / 4 * w.cfg.MaxSpeed * w.cfg.StrafeEfficiency
	rotate := (fl - fr + bl - br) / 4 * w.cfg.MaxTurnRate

	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.pose.Heading * math.Pi / 180
	sin, cos := math.Sincos(h)
	w.pose.X += (forward*sin + strafe*cos) * dt
	w.pose.Z += (-forward*cos + strafe*sin) * dt
	w.pose.Heading += rotate * dt
}

// Run steps the plant at hz until ctx is cancelled.
func (w *World) Run(ctx context.Context, hz int) error {
	if hz <= 0 {
		hz = 100
	}
	period := time.Second / time.Duration(hz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Step(period.Seconds())
		}
	}
}

// bearing returns the horizontal angle from the robot's heading to the tag
// in degrees (positive = tag to the right) and whether the tag is in front.
func (w *World) bearing() (float64, bool) {
	w.mu.Lock()
	p := w.pose
	w.mu.Unlock()

	h := p.Heading * math.Pi / 180
	sin, cos := math.Sincos(h)
	ahead := -p.X*sin + p.Z*cos
	right := -p.X*cos - p.Z*sin
	return math.Atan2(right, ahead) * 180 / math.Pi, ahead > 0
}
