package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/hw"
	"github.com/gwillem/ftcbot/pkg/opmode"
)

var tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)

type PresetsCommand struct{}

func (c *PresetsCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	active := drive.NewPreset(cfg.Drive.Preset)

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	reverseStyle := cellStyle.Foreground(lipgloss.Color("11"))
	activeStyle := cellStyle.Foreground(lipgloss.Color("10")).Bold(true)

	presets := drive.AllPresets()
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		row := []string{fmt.Sprintf("%d", p.Index()), p.Name()}
		for _, w := range drive.AllWheels() {
			row = append(row, p.Polarities().Get(w).String())
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "Preset", "FL", "FR", "BL", "BR").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case row == active.Index():
				return activeStyle
			case col >= 2 && rows[row][col] == hw.Reverse.String():
				return reverseStyle
			}
			return cellStyle
		})

	fmt.Println(headerStyle.Render("Drive direction presets"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("active: %s (cycle with start/back in teleop)", active)))
	fmt.Println()
	fmt.Println(t.Render())
	return nil
}

type ListCommand struct{}

func (c *ListCommand) Execute(args []string) error {
	for _, name := range opmode.DefaultRegistry().Names() {
		fmt.Println(name)
	}
	return nil
}
