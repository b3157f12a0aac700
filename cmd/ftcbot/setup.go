package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/hal/feetech"
	"github.com/gwillem/ftcbot/pkg/hw"
	"github.com/gwillem/ftcbot/pkg/launcher"
	"github.com/gwillem/ftcbot/pkg/robot"
	"github.com/gwillem/ftcbot/pkg/vision"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct {
	MaxID int `long:"max-id" default:"10" description:"Highest servo ID to scan for"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("ftcbot Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(dimStyle.Render(fmt.Sprintf("Ignoring %s: %v", opts.Config, err)))
		cfg = robot.Default()
	}

	// Step 1: robot basics
	if err := askBasics(&cfg); err != nil {
		return err
	}

	// Step 2: hardware
	if cfg.Hardware.Backend == robot.BackendPCA9685 {
		fmt.Println()
		fmt.Println(subHeaderStyle.Render("━━━ PCA9685 ━━━"))
		if err := askPCA9685(&cfg); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(subHeaderStyle.Render("━━━ Feetech servo bus ━━━"))
		scanServoBus(&cfg, c.MaxID)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.SaveTo(opts.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start driving with: " + headerStyle.Render("ftcbot run teleop"))
	return nil
}

func askBasics(cfg *robot.Config) error {
	presetOptions := make([]huh.Option[int], 0, drive.PresetCount)
	for _, p := range drive.AllPresets() {
		presetOptions = append(presetOptions, huh.NewOption(p.String(), p.Index()))
	}
	tag := strconv.Itoa(cfg.Vision.TargetTag)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Hardware backend").
				Options(
					huh.NewOption("Simulator", robot.BackendSim),
					huh.NewOption("PCA9685 PWM board", robot.BackendPCA9685),
				).
				Value(&cfg.Hardware.Backend),
			huh.NewSelect[int]().
				Title("Drive direction preset").
				Description("Which wheel motors are mounted reversed").
				Options(presetOptions...).
				Value(&cfg.Drive.Preset),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Launcher RPM solver").
				Options(
					huh.NewOption("Projectile physics", launcher.StrategyPhysics),
					huh.NewOption("Measured lookup table", launcher.StrategyTable),
				).
				Value(&cfg.Launcher.Strategy),
			huh.NewInput().
				Title("AprilTag to approach").
				Description(fmt.Sprintf("%d accepts any tag", vision.AnyTag)).
				Value(&tag).
				Validate(func(s string) error {
					_, err := strconv.Atoi(s)
					return err
				}),
			huh.NewConfirm().
				Title("Fire when the approach arrives?").
				Value(&cfg.Auto.FireOnApproach),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	cfg.Vision.TargetTag, _ = strconv.Atoi(tag)
	return nil
}

func askPCA9685(cfg *robot.Config) error {
	pc := &cfg.Hardware.PCA9685
	addr := fmt.Sprintf("0x%02x", pc.Address)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("I2C device").
				Value(&pc.I2CDevice),
			huh.NewInput().
				Title("I2C address").
				Value(&addr).
				Validate(func(s string) error {
					_, err := strconv.ParseUint(s, 0, 8)
					return err
				}),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	a, _ := strconv.ParseUint(addr, 0, 8)
	pc.Address = uint8(a)
	return pc.Validate()
}

// scanServoBus looks for a Feetech bus and, if the user picks one, assigns
// its first servo to the loader.
func scanServoBus(cfg *robot.Config, maxID int) {
	fmt.Println("Scanning serial ports for servos...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	found, err := feetech.FindBuses(ctx, 1, maxID)
	if err != nil {
		fmt.Printf("Error scanning: %v\n", err)
		return
	}
	if len(found) == 0 {
		fmt.Println(dimStyle.Render("No servo bus found; the loader stays on the PCA9685."))
		cfg.Hardware.Feetech = nil
		return
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	var rows [][]string
	for _, f := range found {
		for _, s := range f.Servos {
			rows = append(rows, []string{f.Port, strconv.Itoa(s.ID), fmt.Sprintf("%v", s.Model)})
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "ID", "Model").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return cellStyle
		})
	fmt.Println(t.Render())

	options := []huh.Option[string]{huh.NewOption("Don't use a servo bus", "")}
	for _, f := range found {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%d servos)", f.Port, len(f.Servos)), f.Port))
	}
	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Drive the loader from").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	if port == "" {
		cfg.Hardware.Feetech = nil
		return
	}
	for _, f := range found {
		if f.Port == port {
			cfg.Hardware.Feetech = &feetech.Config{
				Port:        port,
				Calibration: feetech.DefaultCalibration(f.Servos, []string{hw.LoaderServo}),
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Loader on servo bus %s", port)))
		}
	}
}
