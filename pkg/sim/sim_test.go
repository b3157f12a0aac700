package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/gwillem/ftcbot/pkg/approach"
	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/hw"
	"github.com/gwillem/ftcbot/pkg/vision"
)

const step = 0.02

func newDrive(t *testing.T, w *World, preset drive.Preset) *drive.Subsystem {
	t.Helper()
	var motors drive.Motors
	for _, wh := range drive.AllWheels() {
		motors[wh] = w.Wheel(wh)
	}
	d, err := drive.NewSubsystem(motors, preset)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestMotorDirection(t *testing.T) {
	m := NewMotor(hw.Reverse, 1000)
	m.SetDirection(hw.Reverse)
	m.SetPower(0.5)
	m.Step(1)
	if m.Output() != 0.5 {
		t.Errorf("Output with matching direction = %v, want 0.5", m.Output())
	}
	if m.Position() != 500 {
		t.Errorf("Position = %d, want 500", m.Position())
	}

	m.SetDirection(hw.Forward)
	m.Step(1)
	if m.Output() != -0.5 {
		t.Errorf("Output with flipped direction = %v, want -0.5", m.Output())
	}
}

func TestMotorRunToPosition(t *testing.T) {
	m := NewMotor(hw.Forward, 1000)
	m.ResetEncoder()
	m.SetTargetPosition(-300)
	m.RunToPosition()
	m.SetPower(0.5)
	if !m.Busy() {
		t.Fatal("motor should be busy before moving")
	}
	for i := 0; i < 200 && m.Busy(); i++ {
		m.Step(step)
	}
	if m.Busy() {
		t.Fatalf("motor still busy at %d", m.Position())
	}
	if got := m.Position(); math.Abs(float64(got+300)) > PositionTolerance {
		t.Errorf("Position = %d, want about -300", got)
	}
	m.Step(step)
	if m.Output() != 0 {
		t.Errorf("motor should hold at target, output %v", m.Output())
	}
}

func TestVelocityMotorSpinUp(t *testing.T) {
	v := NewVelocityMotor(2800, 0.3)
	v.SetVelocity(1400)
	v.Step(0.3)
	if got := v.Velocity(); math.Abs(got-1400*(1-math.Exp(-1))) > 1e-6 {
		t.Errorf("Velocity after tau = %v", got)
	}
	for i := 0; i < 200; i++ {
		v.Step(step)
	}
	if got := v.Velocity(); math.Abs(got-1400) > 1 {
		t.Errorf("settled Velocity = %v, want 1400", got)
	}
	v.SetVelocity(10000)
	if v.Power() != 1 {
		t.Errorf("over-range velocity power = %v, want 1", v.Power())
	}
}

func TestServoClamp(t *testing.T) {
	s := NewServo(0.5)
	s.SetPosition(1.5)
	if s.Position() != 1 {
		t.Errorf("Position = %v, want 1", s.Position())
	}
	s.SetPosition(-1)
	if s.Position() != 0 {
		t.Errorf("Position = %v, want 0", s.Position())
	}
}

func TestWorldKinematics(t *testing.T) {
	tests := []struct {
		name  string
		cmd   drive.Command
		check func(before, after Pose) bool
	}{
		{"forward closes on tag", drive.Command{Forward: 0.5}, func(b, a Pose) bool { return a.Z < b.Z && math.Abs(a.X-b.X) < 1e-9 }},
		{"strafe right grows X", drive.Command{Strafe: 0.5}, func(b, a Pose) bool { return a.X > b.X && math.Abs(a.Z-b.Z) < 1e-9 }},
		{"rotate right grows heading", drive.Command{Rotate: 0.5}, func(b, a Pose) bool { return a.Heading > b.Heading && a.X == b.X }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Start = Pose{X: 0, Z: 2}
			w := NewWorld(cfg)
			d := newDrive(t, w, drive.DefaultPreset)
			if err := d.Drive(tt.cmd); err != nil {
				t.Fatal(err)
			}
			before := w.Pose()
			for i := 0; i < 10; i++ {
				w.Step(step)
			}
			if after := w.Pose(); !tt.check(before, after) {
				t.Errorf("pose %+v -> %+v", before, after)
			}
		})
	}
}

func TestWorldWrongPreset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start = Pose{Z: 2}
	w := NewWorld(cfg)
	// Flipping one front wheel turns a straight drive into a curve.
	d := newDrive(t, w, drive.DefaultPreset.Cycle(1))
	d.Drive(drive.Command{Forward: 0.5})
	for i := 0; i < 10; i++ {
		w.Step(step)
	}
	if w.Pose().Heading == 0 && w.Pose().X == 0 {
		t.Error("mismatched preset still drove straight")
	}
}

func TestCameraFieldOfView(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start = Pose{X: -0.5, Z: 2}
	w := NewWorld(cfg)
	res, err := w.Camera().Latest()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid || len(res.Fiducials) != 1 {
		t.Fatalf("tag should be visible: %+v", res)
	}
	// Robot left of the tag sees it to the right.
	want := math.Atan2(0.5, 2) * 180 / math.Pi
	if math.Abs(res.Tx-want) > 1e-9 {
		t.Errorf("Tx = %v, want %v", res.Tx, want)
	}
	if p := res.Fiducials[0].RobotPose; p.X != -0.5 || p.Z != 2 || p.Y != cfg.TagHeight {
		t.Errorf("RobotPose = %+v", p)
	}

	w.SetPose(Pose{X: 0, Z: 2, Heading: 45})
	if res, _ := w.Camera().Latest(); res.Valid {
		t.Error("tag outside field of view reported valid")
	}

	w.SetPose(Pose{X: 0, Z: 2, Heading: 180})
	if res, _ := w.Camera().Latest(); res.Valid {
		t.Error("tag behind the robot reported valid")
	}

	w.Camera().SetConnected(false)
	if res, _ := w.Camera().Latest(); res != nil {
		t.Error("disconnected camera returned a frame")
	}
}

func TestApproachConverges(t *testing.T) {
	modes := []approach.Mode{approach.Constant, approach.Proportional}
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			w := NewWorld(DefaultConfig())
			d := newDrive(t, w, drive.DefaultPreset)
			tracker := vision.NewTracker(w.Camera(), vision.Config{TargetTag: vision.AnyTag, Standoff: 0.5})

			cfg := approach.DefaultConfig()
			cfg.Axial.Mode = mode
			cfg.Lateral.Mode = mode
			cfg.Yaw.Mode = mode
			ctrl := approach.New(cfg)

			dt := time.Duration(step * float64(time.Second))
			for i := 0; i < 1000; i++ {
				res := ctrl.Step(tracker.Update(), dt)
				if res.AtTarget {
					d.Stop()
					p := w.Pose()
					if math.Abs(p.Z-0.5) > cfg.Axial.Tolerance+0.05 || math.Abs(p.X) > cfg.Lateral.Tolerance+0.05 {
						t.Errorf("stopped at %+v", p)
					}
					return
				}
				if res.State == approach.Searching {
					d.Stop()
				} else {
					d.Drive(res.Command)
				}
				w.Step(step)
			}
			t.Fatalf("never reached target, pose %+v, last %s", w.Pose(), tracker.Status())
		})
	}
}

func TestWorldRun(t *testing.T) {
	w := NewWorld(DefaultConfig())
	w.Shooter().SetVelocity(1000)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx, 200); err != nil {
		t.Fatal(err)
	}
	if w.Shooter().Velocity() <= 0 {
		t.Error("plant did not advance while running")
	}
}
