package opmode

import (
	"errors"

	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/robot"
)

// debugPower is the wheel power used by DebugMotors.
const debugPower = 0.5

// DebugMotors spins one wheel per face button to check wiring and
// direction presets. A: FL, B: FR, X: BL, Y: BR. Left bumper reverses;
// start/back cycle the direction preset.
type DebugMotors struct {
	r                      *robot.Robot
	nextPreset, prevPreset Button
	errs                   errorLog
}

func NewDebugMotors() *DebugMotors {
	return &DebugMotors{errs: errorLog{mode: "debug-motors"}}
}

func (o *DebugMotors) Name() string { return "debug-motors" }

func (o *DebugMotors) Init(r *robot.Robot, t *Telemetry) error {
	o.r = r
	t.Add("Status", "Initialized")
	t.Add("Direction", "%s", r.Chassis().DirectionString())
	return nil
}

func (o *DebugMotors) Loop(in Input, t *Telemetry) bool {
	gp := in.Gamepad
	power := debugPower
	if gp.LeftBumper {
		power = -power
	}
	var p drive.Powers
	if gp.A {
		p.FrontLeft = power
	}
	if gp.B {
		p.FrontRight = power
	}
	if gp.X {
		p.BackLeft = power
	}
	if gp.Y {
		p.BackRight = power
	}
	errs := []error{o.r.Chassis().SetPowers(p)}
	if o.nextPreset.Update(gp.Start) {
		errs = append(errs, o.r.CyclePreset(1))
	}
	if o.prevPreset.Update(gp.Back) {
		errs = append(errs, o.r.CyclePreset(-1))
	}
	o.errs.check(errors.Join(errs...))

	ch := o.r.Chassis()
	t.Add("Direction", "%s", ch.DirectionString())
	t.Add("Powers", "%s", ch.Powers())
	if pos, err := ch.Positions(); err == nil {
		t.Add("Encoders", "FL: %d, FR: %d, BL: %d, BR: %d", pos[0], pos[1], pos[2], pos[3])
	}
	return false
}

func (o *DebugMotors) Stop(*robot.Robot) {}
