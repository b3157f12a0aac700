package opmode

import (
	"errors"
	"time"

	"github.com/gwillem/ftcbot/pkg/approach"
	"github.com/gwillem/ftcbot/pkg/robot"
)

// Approach drives to the configured standoff in front of the target tag.
// With auto.fire_on_approach set it spins up on arrival, fires once the
// shooter is ready and finishes after the fire pause. When the solver has
// no shot from the standoff it stops the shooter and finishes without
// firing.
type Approach struct {
	r       *robot.Robot
	fire    bool
	firing  bool
	firedAt time.Duration
	fired   bool
	rpm     rpmHold
	errs    errorLog
}

func NewApproach() *Approach {
	return &Approach{errs: errorLog{mode: "approach"}}
}

func (o *Approach) Name() string { return "approach" }

func (o *Approach) Init(r *robot.Robot, t *Telemetry) error {
	o.r = r
	o.fire = r.Config().Auto.FireOnApproach
	r.Approach().Reset()
	t.Add("Status", "Initialized")
	t.Add("Target Tag", "%d", r.Vision().TargetTag())
	return nil
}

func (o *Approach) Loop(in Input, t *Telemetry) bool {
	r := o.r
	obs := r.UpdateVision()
	var errs []error

	var res approach.Result
	if o.firing {
		// Hold position while shooting.
		errs = append(errs, r.StopDrive())
		res = approach.Result{State: r.Approach().State(), AtTarget: true, Status: "Firing"}
	} else {
		var err error
		res, err = r.MoveToAprilTag(obs, in.Dt)
		errs = append(errs, err)
		if o.fire && res.AtTarget {
			o.firing = true
			o.rpm.Reset()
			errs = append(errs, r.StopDrive())
		}
	}

	done := false
	if o.firing {
		rpm := o.rpm.Update(r, obs)
		switch {
		case o.fired:
			if in.Elapsed-o.firedAt >= seconds(r.Config().Auto.FirePause) {
				done = true
			}
		case rpm <= 0:
			errs = append(errs, r.SetShooterRPM(0), r.LowerLoader())
			res.Status = "No shot from here"
			logger.Warnf("approach: no possible shot at %.2fm, not firing", obs.Distance)
			done = true
		default:
			errs = append(errs, r.SetShooterRPM(rpm))
			if r.ShooterReady() {
				o.fired = true
				o.firedAt = in.Elapsed
				errs = append(errs, r.RaiseLoader())
			}
		}
	}
	o.errs.check(errors.Join(errs...))

	t.Add("State", "%s", res.State)
	t.Add("Status", "%s", res.Status)
	t.Add("Command", "Axial: %.2f, Lateral: %.2f, Yaw: %.2f",
		res.Command.Forward, res.Command.Strafe, res.Command.Rotate)
	t.Add("No Target Frames", "%d", r.Vision().NoTargetFrames())
	t.AddStatus(r.Status())
	return done
}

func (o *Approach) Stop(r *robot.Robot) {
	r.Approach().Reset()
}
