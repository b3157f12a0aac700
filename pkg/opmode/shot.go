package opmode

import (
	"github.com/gwillem/ftcbot/pkg/robot"
	"github.com/gwillem/ftcbot/pkg/vision"
)

// rpmHold tracks the flywheel target over one shot. While the tag is
// acquired it follows the solver, including its 0 for an impossible shot.
// When the tag drops out it keeps the last solved value, and before any
// solution it uses the configured fixed RPM.
type rpmHold struct {
	rpm    float64
	solved bool
}

func (h *rpmHold) Reset() { *h = rpmHold{} }

func (h *rpmHold) Update(r *robot.Robot, obs vision.Observation) float64 {
	switch {
	case obs.Acquired:
		h.rpm = r.RequiredRPM(obs)
		h.solved = true
	case !h.solved:
		h.rpm = r.Config().Shooter.TargetRPM
	}
	return h.rpm
}
