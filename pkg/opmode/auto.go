package opmode

import (
	"errors"
	"fmt"
	"time"

	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/robot"
)

// Alliance selects the side of the field, which mirrors lateral moves.
type Alliance int

const (
	Red Alliance = iota
	Blue
)

func (a Alliance) String() string {
	if a == Blue {
		return "BLUE"
	}
	return "RED"
}

// strafeSign is the direction of the final park strafe: right for red,
// left for blue.
func (a Alliance) strafeSign() float64 {
	if a == Blue {
		return -1
	}
	return 1
}

// step is one timed stage of an autonomous plan. enter runs on the first
// cycle of the stage.
type step struct {
	name  string
	dur   time.Duration
	enter func(r *robot.Robot) error
}

// TimedAuto runs a fixed open-loop plan: back away from the wall, spin up,
// fire, then park with a strafe. Stage changes are checked against elapsed
// time every cycle so the loop never blocks.
type TimedAuto struct {
	name     string
	alliance Alliance
	r        *robot.Robot
	steps    []step
	current  int
	errs     errorLog
}

func NewTimedAuto(name string, a Alliance) *TimedAuto {
	return &TimedAuto{name: name, alliance: a, current: -1, errs: errorLog{mode: name}}
}

func (o *TimedAuto) Name() string { return o.name }

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (o *TimedAuto) Init(r *robot.Robot, t *Telemetry) error {
	o.r = r
	cfg := r.Config()
	auto := cfg.Auto
	o.steps = []step{
		{"drive backward", seconds(auto.DriveBackward), func(r *robot.Robot) error {
			return r.Drive(drive.Command{Forward: -auto.DrivePower})
		}},
		{"spin up", seconds(auto.SpinUpPause), func(r *robot.Robot) error {
			return errors.Join(r.StopDrive(), r.SetShooterRPM(cfg.Shooter.TargetRPM))
		}},
		{"fire", seconds(auto.FirePause), func(r *robot.Robot) error {
			return r.RaiseLoader()
		}},
		{"park", seconds(auto.Strafe), func(r *robot.Robot) error {
			return errors.Join(
				r.SetShooterRPM(0),
				r.LowerLoader(),
				r.Drive(drive.Command{Strafe: o.alliance.strafeSign() * auto.DrivePower}),
			)
		}},
	}
	t.Add("Status", "Initialized")
	t.Add("Alliance", "%s", o.alliance)
	return nil
}

// stepAt returns the index of the stage running at elapsed, or len(steps)
// once the plan is over.
func (o *TimedAuto) stepAt(elapsed time.Duration) int {
	var end time.Duration
	for i, s := range o.steps {
		end += s.dur
		if elapsed < end {
			return i
		}
	}
	return len(o.steps)
}

func (o *TimedAuto) Loop(in Input, t *Telemetry) bool {
	idx := o.stepAt(in.Elapsed)
	// Enter every stage up to idx so a long cycle cannot skip one.
	for o.current < idx && o.current < len(o.steps)-1 {
		o.current++
		s := o.steps[o.current]
		logger.WithField("opmode", o.name).Infof("stage %q at %s", s.name, in.Elapsed)
		o.errs.check(s.enter(o.r))
	}

	t.Add("Alliance", "%s", o.alliance)
	if idx >= len(o.steps) {
		o.errs.check(o.r.StopDrive())
		t.Add("Stage", "done")
		return true
	}
	t.Add("Stage", "%s", o.steps[idx].name)
	t.AddStatus(o.r.Status())
	return false
}

func (o *TimedAuto) Stop(*robot.Robot) {}

// segment is one encoder move of EncoderAuto.
type segment struct {
	name    string
	targets func(g drive.Geometry) [4]int
}

// EncoderAuto strafes left 24 inches and then backs up 48 inches with
// run-to-position moves. A segment that does not finish within the
// configured timeout is abandoned.
type EncoderAuto struct {
	r        *robot.Robot
	segments []segment
	current  int
	started  time.Duration
	entered  bool
	errs     errorLog
}

func NewEncoderAuto() *EncoderAuto {
	return &EncoderAuto{
		segments: []segment{
			{"strafe left 24in", func(g drive.Geometry) [4]int { return g.StrafeTargets(-24) }},
			{"back 48in", func(g drive.Geometry) [4]int { return g.DriveTargets(-48) }},
		},
		errs: errorLog{mode: "auto-encoders"},
	}
}

func (o *EncoderAuto) Name() string { return "auto-encoders" }

func (o *EncoderAuto) Init(r *robot.Robot, t *Telemetry) error {
	if !r.Chassis().HasEncoders() {
		return fmt.Errorf("auto-encoders: %w", drive.ErrNoEncoders)
	}
	o.r = r
	if err := r.Chassis().ResetEncoders(); err != nil {
		return fmt.Errorf("reset encoders: %w", err)
	}
	t.Add("Status", "Initialized")
	return nil
}

func (o *EncoderAuto) Loop(in Input, t *Telemetry) bool {
	ch := o.r.Chassis()
	cfg := o.r.Config().Drive

	if o.current >= len(o.segments) {
		return true
	}
	seg := o.segments[o.current]
	if !o.entered {
		o.entered = true
		o.started = in.Elapsed
		o.errs.check(errors.Join(
			ch.ResetEncoders(),
			ch.SetTargetPositions(seg.targets(cfg.Geometry)),
			ch.SetAllPower(cfg.EncoderPower),
		))
		logger.WithField("opmode", o.Name()).Infof("segment %q", seg.name)
	} else if timeout := seconds(cfg.SegmentTimeout); !ch.Busy() || in.Elapsed-o.started >= timeout {
		if ch.Busy() {
			logger.WithField("opmode", o.Name()).Warnf("segment %q timed out after %s", seg.name, timeout)
		}
		o.errs.check(ch.SetAllPower(0))
		o.current++
		o.entered = false
	}

	if pos, err := ch.Positions(); err == nil {
		t.Add("Encoders", "FL: %d, FR: %d, BL: %d, BR: %d", pos[0], pos[1], pos[2], pos[3])
	}
	if o.current >= len(o.segments) {
		o.errs.check(ch.RunUsingEncoders())
		t.Add("Segment", "done")
		return true
	}
	t.Add("Segment", "%s", o.segments[o.current].name)
	return false
}

func (o *EncoderAuto) Stop(r *robot.Robot) {
	if o.r != nil {
		o.errs.check(r.Chassis().RunUsingEncoders())
	}
}
