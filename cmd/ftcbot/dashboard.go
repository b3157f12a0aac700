package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/opmode"
	"github.com/gwillem/ftcbot/pkg/sim"
)

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
	panelWidth   = 62
)

// Wheel colors
var wheelColors = map[drive.Wheel]string{
	drive.FrontLeft:  "196", // red
	drive.FrontRight: "226", // yellow
	drive.BackLeft:   "46",  // green
	drive.BackRight:  "51",  // cyan
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

type dashboardModel struct {
	runner *opmode.Runner
	world  *sim.World
	pad    *keyboardGamepad
	logCh  <-chan string
	runID  string

	chart    *streamlinechart.Model
	state    opmode.State
	width    int // terminal width
	height   int // terminal height
	logs     []string
	quitting bool
}

// Messages from the runner
type stateMsg opmode.State
type logMsg string

func waitForState(runner *opmode.Runner) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-runner.States())
	}
}

func waitForLog(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ch)
	}
}

func newDashboard(runner *opmode.Runner, world *sim.World, pad *keyboardGamepad, logCh <-chan string, runID string) dashboardModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-1, 1),
	)
	for _, w := range drive.AllWheels() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(wheelColors[w]))
		chart.SetDataSetStyles(w.String(), runes.ThinLineStyle, style)
	}
	return dashboardModel{
		runner: runner,
		world:  world,
		pad:    pad,
		logCh:  logCh,
		runID:  runID,
		chart:  &chart,
	}
}

func (m *dashboardModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *dashboardModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 60, 20 // default size before we know terminal size
	}
	width = m.width - panelWidth - borderSize - 4
	if width < 30 {
		width = 30
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.runner),
		waitForLog(m.logCh),
	)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(m.chartSize())
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		default:
			m.pad.Press(key)
		}

	case stateMsg:
		state := opmode.State(msg)
		// Freeze the chart once the opmode has stopped.
		if state.Phase == opmode.Running {
			for _, w := range drive.AllWheels() {
				m.chart.PushDataSet(w.String(), state.Status.Powers.Get(w))
			}
			m.chart.DrawAll()
		}
		m.state = state
		return m, waitForState(m.runner)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.logCh)
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("ftcbot " + m.runner.OpMode().Name()))
	sb.WriteString(fmt.Sprintf(" - %s %s @ %d Hz", m.state.Phase, m.state.Elapsed.Round(100*time.Millisecond), m.runner.Hz()))
	sb.WriteString(statusStyle.Render("  run " + m.runID[:8]))
	sb.WriteString("\n\n")

	chart := chartStyle.Render(m.chart.View()) + "\n" + renderLegend()
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chart, " ", m.renderPanel()))
	sb.WriteString("\n")

	// Log box
	logWidth := m.width - 4
	if logWidth < 20 {
		logWidth = 20
	}
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(logWidth).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render(keyHelp)
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m dashboardModel) renderPanel() string {
	var lines []string
	for _, l := range m.state.Telemetry {
		if l.Key == "" {
			lines = append(lines, l.Value)
			continue
		}
		lines = append(lines, keyStyle.Render(l.Key)+" "+l.Value)
	}
	if m.world != nil {
		p := m.world.Pose()
		lines = append(lines, "", statusStyle.Render(fmt.Sprintf("sim pose x=%.2fm z=%.2fm heading=%.1f°", p.X, p.Z, p.Heading)))
	}
	if len(lines) == 0 {
		lines = append(lines, statusStyle.Render("waiting for telemetry"))
	}
	return panelStyle.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

func renderLegend() string {
	var items []string
	for _, w := range drive.AllWheels() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(wheelColors[w])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+w.String())
	}
	return strings.Join(items, "  ")
}
