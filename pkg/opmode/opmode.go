// Package opmode runs robot programs. An OpMode is a per-cycle program; the
// Runner owns the tick loop, feeds it gamepad input and forces every output
// to zero when it stops.
package opmode

import (
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/gwillem/ftcbot/pkg/robot"
)

var logger = log.WithFields(log.Fields{"pkg": "opmode"})

// ErrUnknownOpMode is returned by Registry.New for unregistered names.
var ErrUnknownOpMode = errors.New("unknown opmode")

// OpMode is a robot program. Init is called once before the first loop;
// Loop is called every cycle and returns true when the program is done.
// Stop is called once when the runner stops, after which the runner zeroes
// all outputs.
type OpMode interface {
	Name() string
	Init(r *robot.Robot, t *Telemetry) error
	Loop(in Input, t *Telemetry) bool
	Stop(r *robot.Robot)
}

// Factory creates a fresh OpMode.
type Factory func() OpMode

// Registry maps OpMode names to factories.
type Registry map[string]Factory

// DefaultRegistry returns every built-in OpMode.
func DefaultRegistry() Registry {
	return Registry{
		"teleop":        func() OpMode { return NewTeleOp("teleop", false) },
		"teleop-slow":   func() OpMode { return NewTeleOp("teleop-slow", true) },
		"auto-red":      func() OpMode { return NewTimedAuto("auto-red", Red) },
		"auto-blue":     func() OpMode { return NewTimedAuto("auto-blue", Blue) },
		"auto-encoders": func() OpMode { return NewEncoderAuto() },
		"approach":      func() OpMode { return NewApproach() },
		"rpm-tuner":     func() OpMode { return NewRPMTuner() },
		"debug-motors":  func() OpMode { return NewDebugMotors() },
	}
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the OpMode registered under name.
func (r Registry) New(name string) (OpMode, error) {
	f, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownOpMode, name)
	}
	return f(), nil
}

// errorLog logs robot errors from inside a loop without repeating the same
// message every cycle.
type errorLog struct {
	mode string
	last string
}

func (e *errorLog) check(err error) {
	if err == nil {
		e.last = ""
		return
	}
	if msg := err.Error(); msg != e.last {
		e.last = msg
		logger.WithField("opmode", e.mode).Warn(msg)
	}
}
