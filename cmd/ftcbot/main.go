package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/gwillem/ftcbot/pkg/robot"
)

type Options struct {
	Config  string `short:"c" long:"config" default:"ftcbot.json" description:"Configuration file"`
	Verbose bool   `short:"v" long:"verbose" description:"Debug logging"`

	Run     RunCommand     `command:"run" description:"Run an opmode on the simulator or the robot"`
	List    ListCommand    `command:"list" alias:"ls" description:"List the available opmodes"`
	Solve   SolveCommand   `command:"solve" description:"Compute the flywheel RPM for a shot"`
	Presets PresetsCommand `command:"presets" description:"Show the drive direction presets"`
	Setup   SetupCommand   `command:"setup" description:"Choose the hardware backend and tunables"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

var logger = log.WithFields(log.Fields{"pkg": "main"})

func main() {
	parser.LongDescription = "ftcbot - FTC robot control: mecanum drive, launcher and AprilTag approach"
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if opts.Verbose {
			log.SetLevel(log.DebugLevel)
		}
		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file if there is one, applies FTCBOT_*
// overrides and validates the result.
func loadConfig() (robot.Config, error) {
	cfg := robot.Default()
	loaded, err := robot.LoadConfigFrom(opts.Config)
	switch {
	case err == nil:
		cfg = *loaded
		logger.Debugf("loaded configuration from %s", opts.Config)
	case errors.Is(err, fs.ErrNotExist):
		logger.Debugf("no %s, using defaults", opts.Config)
	default:
		return cfg, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", opts.Config, err)
	}
	return cfg, nil
}
