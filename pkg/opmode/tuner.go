package opmode

import (
	"encoding/json"
	"errors"
	"math"
	"sort"

	"github.com/gwillem/ftcbot/pkg/launcher"
	"github.com/gwillem/ftcbot/pkg/robot"
)

// RPMTuner finds flywheel speeds by hand and records them against the
// measured tag distance, producing entries for a launcher lookup table.
//
//	d-pad up/down     +/- 500 RPM
//	d-pad right/left  +/- 100 RPM
//	A                 toggle shooter
//	B                 stop shooter
//	X                 record (distance, RPM)
type RPMTuner struct {
	r       *robot.Robot
	rpm     float64
	running Toggle

	up, down, right, left, stop, record Button

	entries []launcher.Entry
	errs    errorLog
}

func NewRPMTuner() *RPMTuner {
	return &RPMTuner{errs: errorLog{mode: "rpm-tuner"}}
}

func (o *RPMTuner) Name() string { return "rpm-tuner" }

func (o *RPMTuner) Init(r *robot.Robot, t *Telemetry) error {
	o.r = r
	o.rpm = r.Config().Shooter.TargetRPM
	t.Add("Status", "Initialized")
	t.Add("Target RPM", "%.0f", o.rpm)
	return nil
}

func (o *RPMTuner) Loop(in Input, t *Telemetry) bool {
	r, gp := o.r, in.Gamepad
	obs := r.UpdateVision()

	step := 0.0
	if o.up.Update(gp.DpadUp) {
		step += 500
	}
	if o.down.Update(gp.DpadDown) {
		step -= 500
	}
	if o.right.Update(gp.DpadRight) {
		step += 100
	}
	if o.left.Update(gp.DpadLeft) {
		step -= 100
	}
	o.rpm = math.Max(0, math.Min(r.Config().Shooter.MaxRPM, o.rpm+step))

	o.running.Update(gp.A)
	if o.stop.Update(gp.B) {
		o.running.Set(false)
	}
	target := 0.0
	if o.running.On() {
		target = o.rpm
	}
	var errs []error
	errs = append(errs, r.StopDrive(), r.SetShooterRPM(target))

	if o.record.Update(gp.X) {
		if obs.Acquired {
			o.entries = append(o.entries, launcher.Entry{Distance: obs.Distance, RPM: o.rpm})
			logger.WithField("opmode", o.Name()).Infof("recorded %.2fm at %.0f RPM", obs.Distance, o.rpm)
		} else {
			errs = append(errs, errors.New("record: no target"))
		}
	}
	o.errs.check(errors.Join(errs...))

	t.Add("Target RPM", "%.0f", o.rpm)
	t.Add("Shooter", "%s | Actual: %.0f RPM | Ready: %v", onOff(o.running.On()), r.ShooterRPM(), r.ShooterReady())
	if obs.Acquired {
		t.Add("Distance", "%.2fm", obs.Distance)
		if solved := r.RequiredRPM(obs); solved > 0 {
			t.Add("Solver RPM", "%.0f", solved)
		}
	} else {
		t.Add("Distance", "no target")
	}
	t.Add("Recorded", "%d", len(o.entries))
	return false
}

// Entries returns the recorded points sorted by distance.
func (o *RPMTuner) Entries() []launcher.Entry {
	out := make([]launcher.Entry, len(o.entries))
	copy(out, o.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// Stop logs the recorded table in the launcher config format.
func (o *RPMTuner) Stop(*robot.Robot) {
	if len(o.entries) == 0 {
		return
	}
	data, err := json.Marshal(o.Entries())
	if err != nil {
		logger.Warnf("encode table: %v", err)
		return
	}
	logger.WithField("opmode", o.Name()).Infof("launcher table: %s", data)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
