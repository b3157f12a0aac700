package opmode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gwillem/ftcbot/pkg/robot"
)

// Phase is the runner's lifecycle position.
type Phase int

const (
	Idle Phase = iota
	Initialized
	Running
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "INIT"
	case Running:
		return "RUNNING"
	case Stopped:
		return "STOPPED"
	}
	return "IDLE"
}

var (
	ErrNotInitialized = errors.New("opmode not initialized")
	ErrStopped        = errors.New("opmode stopped")
)

// State represents one published cycle of the runner.
type State struct {
	OpMode    string
	Phase     Phase
	Cycle     int
	Elapsed   time.Duration
	Status    robot.Status
	Telemetry []Line
	Timestamp time.Time
}

// Runner drives one OpMode through init, loop and stop.
type Runner struct {
	robot  *robot.Robot
	mode   OpMode
	hz     int
	period time.Duration

	mu      sync.RWMutex
	phase   Phase
	cycle   int
	elapsed time.Duration
	tel     Telemetry
	stateCh chan State
	logCh   chan string
}

// NewRunner creates a runner for mode at hz cycles per second. hz <= 0 uses
// the robot's configured loop rate.
func NewRunner(r *robot.Robot, mode OpMode, hz int) *Runner {
	if hz <= 0 {
		hz = r.Config().LoopHz
	}
	if hz <= 0 {
		hz = 50
	}
	return &Runner{
		robot:   r,
		mode:    mode,
		hz:      hz,
		period:  time.Second / time.Duration(hz),
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}
}

// States returns a channel that receives state updates. Only the latest
// state is kept.
func (rn *Runner) States() <-chan State {
	return rn.stateCh
}

// Logs returns a channel that receives log messages.
func (rn *Runner) Logs() <-chan string {
	return rn.logCh
}

func (rn *Runner) Hz() int { return rn.hz }

func (rn *Runner) OpMode() OpMode { return rn.mode }

func (rn *Runner) Phase() Phase {
	rn.mu.RLock()
	defer rn.mu.RUnlock()
	return rn.phase
}

func (rn *Runner) log(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	logger.WithField("opmode", rn.mode.Name()).Info(text)
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), text)
	select {
	case rn.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Init runs the OpMode's init hook once.
func (rn *Runner) Init() error {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	if rn.phase != Idle {
		return fmt.Errorf("init %s: already %s", rn.mode.Name(), rn.phase)
	}
	rn.tel.Clear()
	if err := rn.mode.Init(rn.robot, &rn.tel); err != nil {
		rn.phase = Stopped
		rn.halt()
		return fmt.Errorf("init %s: %w", rn.mode.Name(), err)
	}
	rn.phase = Initialized
	rn.log("%s initialized", rn.mode.Name())
	rn.publish()
	return nil
}

// Step runs one loop cycle with gp as input. The first Step starts the
// OpMode. It returns true once the OpMode has finished; the runner is then
// stopped and later calls are no-ops.
func (rn *Runner) Step(gp Gamepad) (bool, error) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	switch rn.phase {
	case Idle:
		return false, ErrNotInitialized
	case Stopped:
		return true, nil
	case Initialized:
		rn.phase = Running
		rn.log("%s started at %d Hz", rn.mode.Name(), rn.hz)
	default:
		rn.elapsed += rn.period
	}

	in := Input{Gamepad: gp, Cycle: rn.cycle, Elapsed: rn.elapsed, Dt: rn.period}
	rn.tel.Clear()
	done := rn.mode.Loop(in, &rn.tel)
	rn.cycle++
	if done {
		rn.log("%s finished after %s", rn.mode.Name(), rn.elapsed.Round(time.Millisecond))
		rn.stop()
	}
	rn.publish()
	return done, nil
}

// Stop ends the OpMode and zeroes all outputs. Calling it more than once is
// safe.
func (rn *Runner) Stop() {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	if rn.phase == Stopped {
		return
	}
	rn.stop()
	rn.publish()
}

func (rn *Runner) stop() {
	rn.mode.Stop(rn.robot)
	rn.phase = Stopped
	rn.halt()
	rn.log("%s stopped", rn.mode.Name())
}

func (rn *Runner) halt() {
	if err := errors.Join(rn.robot.Stop(), rn.robot.LowerLoader()); err != nil {
		rn.log("Warning: failed to stop outputs: %v", err)
	}
}

// Run initializes the OpMode if needed and steps it at the runner's rate,
// reading input from src (nil means a released gamepad). It returns nil when
// the OpMode finishes and ctx.Err() when cancelled; outputs are zeroed
// either way.
func (rn *Runner) Run(ctx context.Context, src GamepadSource) error {
	if rn.Phase() == Idle {
		if err := rn.Init(); err != nil {
			return err
		}
	}
	if rn.Phase() == Stopped {
		return ErrStopped
	}

	ticker := time.NewTicker(rn.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rn.Stop()
			return ctx.Err()
		case <-ticker.C:
			var gp Gamepad
			if src != nil {
				gp = src.Gamepad()
			}
			done, err := rn.Step(gp)
			if err != nil {
				rn.Stop()
				return err
			}
			if done {
				return nil
			}
		}
	}
}

// publish must be called with rn.mu held.
func (rn *Runner) publish() {
	rn.sendState(State{
		OpMode:    rn.mode.Name(),
		Phase:     rn.phase,
		Cycle:     rn.cycle,
		Elapsed:   rn.elapsed,
		Status:    rn.robot.Status(),
		Telemetry: rn.tel.Lines(),
		Timestamp: time.Now(),
	})
}

func (rn *Runner) sendState(s State) {
	select {
	case rn.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-rn.stateCh:
		default:
		}
		rn.stateCh <- s
	}
}
