package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/ftcbot/pkg/launcher"
)

type SolveCommand struct {
	Height   float64 `long:"height" default:"0.75" description:"Target height above the launcher (m)"`
	Strategy string  `long:"strategy" choice:"physics" choice:"table" description:"Override the configured solver"`
	Sweep    bool    `long:"sweep" description:"Print a table from 0.5 m to 4 m"`

	Args struct {
		Distance float64 `positional-arg-name:"distance" description:"Horizontal distance to the target (m)"`
	} `positional-args:"yes"`
}

func (c *SolveCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lc := cfg.Launcher
	if c.Strategy != "" {
		lc.Strategy = c.Strategy
	}
	solver, err := launcher.NewSolver(lc)
	if err != nil {
		return err
	}
	ticksPerRev := cfg.Shooter.TicksPerRev

	row := func(d float64) []string {
		v := launcher.LaunchVelocity(d, c.Height, lc.AngleRadians())
		rpm := solver.RequiredRPM(d, c.Height)
		if rpm <= 0 {
			return []string{fmt.Sprintf("%.2f", d), "-", "impossible", "-"}
		}
		velocity := "-"
		if v > 0 {
			velocity = fmt.Sprintf("%.2f", v)
		}
		tps := launcher.RPMToTicksPerSecond(rpm, ticksPerRev)
		return []string{fmt.Sprintf("%.2f", d), velocity, fmt.Sprintf("%.0f", rpm), fmt.Sprintf("%.0f", tps)}
	}

	var rows [][]string
	if c.Sweep {
		for d := 0.5; d <= 4.0+1e-9; d += 0.25 {
			rows = append(rows, row(d))
		}
	} else {
		if c.Args.Distance <= 0 {
			return fmt.Errorf("distance required (or use --sweep)")
		}
		rows = append(rows, row(c.Args.Distance))
	}

	fmt.Println(headerStyle.Render("Launch solution"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%s solver · %.0f° · height %.2f m · max %.0f RPM",
		lc.Strategy, lc.LaunchAngleDeg, c.Height, cfg.Shooter.MaxRPM)))
	fmt.Println()

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Distance (m)", "Velocity (m/s)", "RPM", "Ticks/s").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 2 && row >= 0 && row < len(rows) {
				if rows[row][2] == "impossible" {
					return cellStyle.Foreground(lipgloss.Color("9"))
				}
				return cellStyle.Foreground(lipgloss.Color("10"))
			}
			return cellStyle
		})
	fmt.Println(t.Render())
	return nil
}
