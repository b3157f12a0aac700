package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gwillem/ftcbot/pkg/opmode"
	"github.com/gwillem/ftcbot/pkg/robot"
)

type RunCommand struct {
	Hz       int           `long:"hz" description:"Control loop frequency (default: loop_hz from config)"`
	SimHz    int           `long:"sim-hz" default:"200" description:"Simulator step frequency"`
	Headless bool          `long:"headless" description:"No dashboard; log telemetry instead"`
	Duration time.Duration `long:"duration" description:"Stop after this long (e.g. 30s)"`

	Args struct {
		OpMode string `positional-arg-name:"opmode" description:"OpMode to run (see 'ftcbot list')"`
	} `positional-args:"yes"`
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name := c.Args.OpMode
	if name == "" {
		name = "teleop"
	}
	mode, err := opmode.DefaultRegistry().New(name)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	runLog := logger.WithField("run", runID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The dashboard owns the terminal; route log lines into its log box.
	var logs chan string
	if !c.Headless {
		logs = make(chan string, 32)
		log.SetOutput(io.Discard)
		log.AddHook(&logBoxHook{ch: logs})
	}

	h, err := openHardware(ctx, cfg.Hardware)
	if err != nil {
		return err
	}
	defer h.Close()

	r, err := robot.New(h.m, cfg)
	if err != nil {
		return err
	}
	runner := opmode.NewRunner(r, mode, c.Hz)
	runLog.Infof("running %s on %s at %d Hz", name, cfg.Hardware.Backend, runner.Hz())

	pad := newKeyboardGamepad()
	g, ctx := errgroup.WithContext(ctx)

	if h.world != nil {
		g.Go(func() error { return h.world.Run(ctx, c.SimHz) })
	}

	g.Go(func() error {
		var src opmode.GamepadSource
		if !c.Headless {
			src = pad
		}
		err := runner.Run(ctx, src)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}
		if err != nil || c.Headless {
			cancel()
		} else {
			runLog.Info("opmode finished, press esc to exit")
		}
		return err
	})

	if c.Headless {
		g.Go(func() error {
			reportStates(ctx, runner, runLog)
			return nil
		})
	} else {
		p := tea.NewProgram(newDashboard(runner, h.world, pad, logs, runID), tea.WithAltScreen())
		g.Go(func() error {
			defer cancel()
			_, err := p.Run()
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			p.Quit()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	runLog.Infof("stopped, final state %s", runner.Phase())
	return nil
}

// reportStates logs the telemetry once a second until ctx is done.
func reportStates(ctx context.Context, runner *opmode.Runner, l *log.Entry) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var last opmode.State
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-runner.States():
			last = s
		case msg := <-runner.Logs():
			l.Debug(msg)
		case <-ticker.C:
			if last.Timestamp.IsZero() {
				continue
			}
			fields := log.Fields{"phase": last.Phase, "elapsed": last.Elapsed.Round(time.Millisecond)}
			for _, line := range last.Telemetry {
				fields[strings.ToLower(strings.ReplaceAll(line.Key, " ", "_"))] = line.Value
			}
			l.WithFields(fields).Info(last.OpMode)
		}
	}
}

// logBoxHook forwards log entries to the dashboard.
type logBoxHook struct {
	ch chan string
}

func (h *logBoxHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel, log.InfoLevel}
}

func (h *logBoxHook) Fire(e *log.Entry) error {
	msg := fmt.Sprintf("[%s] %s %s", e.Time.Format("15:04:05"), strings.ToUpper(e.Level.String()[:4]), e.Message)
	select {
	case h.ch <- msg:
	default:
		// Drop if channel full
	}
	return nil
}
