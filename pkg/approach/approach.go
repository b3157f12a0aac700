// Package approach drives the robot toward a visible AprilTag.
//
// The controller is a small state machine: SEARCHING while no target is
// acquired (the caller stops the drive), APPROACHING otherwise. Each axis
// is corrected independently and stops once inside its tolerance.
package approach

import (
	"fmt"
	"math"
	"time"

	"github.com/felixge/pidctrl"
	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/vision"
)

type State int

const (
	Searching State = iota
	Approaching
)

func (s State) String() string {
	switch s {
	case Searching:
		return "SEARCHING"
	case Approaching:
		return "APPROACHING"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Mode selects how an axis turns its error into power.
type Mode string

const (
	// Constant applies ±MaxPower whenever the axis is out of tolerance.
	Constant Mode = "constant"
	// Proportional applies Gain·error, floored at MinPower and capped at
	// MaxPower.
	Proportional Mode = "proportional"
)

// AxisConfig tunes one axis.
type AxisConfig struct {
	Mode      Mode    `json:"mode"`
	Tolerance float64 `json:"tolerance"`
	Gain      float64 `json:"gain"`
	MinPower  float64 `json:"min_power"`
	MaxPower  float64 `json:"max_power"`
	// Invert flips the command sign relative to the error.
	Invert bool `json:"invert"`
}

// Config tunes the whole controller. Axial and lateral errors are metres,
// yaw error is degrees.
type Config struct {
	Axial   AxisConfig `json:"axial"`
	Lateral AxisConfig `json:"lateral"`
	Yaw     AxisConfig `json:"yaw"`
}

func DefaultConfig() Config {
	return Config{
		Axial:   AxisConfig{Mode: Constant, Tolerance: 0.15, Gain: 1.5, MinPower: 0.1, MaxPower: 1.0},
		Lateral: AxisConfig{Mode: Constant, Tolerance: 0.05, Gain: 2.0, MinPower: 0.1, MaxPower: 1.0, Invert: true},
		Yaw:     AxisConfig{Mode: Constant, Tolerance: 5.0, Gain: 0.03, MinPower: 0.05, MaxPower: 1.0},
	}
}

// Validate checks tolerances and power limits.
func (c Config) Validate() error {
	for _, a := range []struct {
		name string
		cfg  AxisConfig
	}{{"axial", c.Axial}, {"lateral", c.Lateral}, {"yaw", c.Yaw}} {
		switch a.cfg.Mode {
		case Constant, Proportional:
		default:
			return fmt.Errorf("%s axis: unknown mode %q", a.name, a.cfg.Mode)
		}
		if a.cfg.Tolerance < 0 {
			return fmt.Errorf("%s axis: negative tolerance %v", a.name, a.cfg.Tolerance)
		}
		if a.cfg.MaxPower <= 0 || a.cfg.MaxPower > 1 {
			return fmt.Errorf("%s axis: max power %v outside (0, 1]", a.name, a.cfg.MaxPower)
		}
		if a.cfg.MinPower < 0 || a.cfg.MinPower > a.cfg.MaxPower {
			return fmt.Errorf("%s axis: min power %v outside [0, %v]", a.name, a.cfg.MinPower, a.cfg.MaxPower)
		}
	}
	return nil
}

// Result is the outcome of one Step.
type Result struct {
	State    State
	AtTarget bool
	Status   string
	Command  drive.Command
}

type axis struct {
	cfg AxisConfig
	pid *pidctrl.PIDController
}

func newAxis(cfg AxisConfig) *axis {
	a := &axis{cfg: cfg}
	// Pure P controller tracking zero error.
	a.pid = pidctrl.NewPIDController(cfg.Gain, 0, 0)
	a.pid.Set(0)
	a.pid.SetOutputLimits(-cfg.MaxPower, cfg.MaxPower)
	return a
}

func (a *axis) within(err float64) bool {
	return math.Abs(err) <= a.cfg.Tolerance
}

// command returns the power for err, or 0 inside the tolerance.
func (a *axis) command(err float64, dt time.Duration) float64 {
	if a.within(err) {
		return 0
	}
	var out float64
	switch a.cfg.Mode {
	case Proportional:
		// setpoint 0, so feeding -err yields Gain·err
		out = a.pid.UpdateDuration(-err, dt)
		if math.Abs(out) < a.cfg.MinPower {
			out = math.Copysign(a.cfg.MinPower, err)
		}
	default:
		out = math.Copysign(a.cfg.MaxPower, err)
	}
	if a.cfg.Invert {
		out = -out
	}
	return out
}

// Controller computes drive commands from target observations.
type Controller struct {
	cfg                 Config
	axial, lateral, yaw *axis
	state               State
}

func New(cfg Config) *Controller {
	c := &Controller{}
	c.Configure(cfg)
	return c
}

// Configure swaps in new tuning and resets the state.
func (c *Controller) Configure(cfg Config) {
	c.cfg = cfg
	c.axial = newAxis(cfg.Axial)
	c.lateral = newAxis(cfg.Lateral)
	c.yaw = newAxis(cfg.Yaw)
	c.state = Searching
}

func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) State() State { return c.state }

// Reset returns to SEARCHING.
func (c *Controller) Reset() { c.state = Searching }

// Step consumes one observation. dt is the time since the previous step.
func (c *Controller) Step(obs vision.Observation, dt time.Duration) Result {
	if !obs.Acquired {
		c.state = Searching
		return Result{State: Searching, Status: "No target"}
	}
	c.state = Approaching

	yawErr := 0.0
	if obs.YawValid {
		yawErr = obs.Yaw
	}

	cmd := drive.Command{
		Forward: c.axial.command(obs.Forward, dt),
		Strafe:  c.lateral.command(obs.Lateral, dt),
		Rotate:  c.yaw.command(yawErr, dt),
	}
	atTarget := c.axial.within(obs.Forward) && c.lateral.within(obs.Lateral) && c.yaw.within(yawErr)

	status := "Moving to tag"
	if atTarget {
		status = "At target"
	}
	return Result{State: Approaching, AtTarget: atTarget, Status: status, Command: cmd}
}
