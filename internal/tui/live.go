package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fixpid/internal/drive"
	"github.com/san-kum/fixpid/internal/sim"
)

const (
	historyLen = 120
	maxSpeed   = 32
)

type tickMsg time.Time

// Model is a live view of a closed loop. Each frame advances the loop by
// speed sample periods; frames arrive once per sample period of wall time.
type Model struct {
	loop     *sim.Loop
	setpoint *sim.Adjustable
	nudge    float64
	frame    time.Duration

	paused   bool
	speed    int
	sp, fb   []float64
	last     sim.Sample
	failures int
	lastErr  error

	width int
}

// NewLive builds a view over loop. setpoint may be nil, in which case the
// arrow keys do nothing. nudge is the setpoint change per key press.
func NewLive(loop *sim.Loop, setpoint *sim.Adjustable, nudge float64) *Model {
	return &Model{
		loop:     loop,
		setpoint: setpoint,
		nudge:    nudge,
		frame:    time.Duration(loop.SampleTime() * float64(time.Second)),
		speed:    1,
		sp:       make([]float64, 0, historyLen),
		fb:       make([]float64, 0, historyLen),
		width:    80,
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if !m.paused {
			for i := 0; i < m.speed; i++ {
				m.advance()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case " ":
		m.paused = !m.paused
	case "up", "k":
		if m.setpoint != nil {
			m.setpoint.Offset += m.nudge
		}
	case "down", "j":
		if m.setpoint != nil {
			m.setpoint.Offset -= m.nudge
		}
	case "+", "=":
		if m.speed < maxSpeed {
			m.speed *= 2
		}
	case "-":
		if m.speed > 1 {
			m.speed /= 2
		}
	case "n":
		if m.paused {
			m.advance()
		}
	}
	return nil
}

func (m *Model) advance() {
	s, err := m.loop.Tick()
	if err != nil {
		m.failures++
		m.lastErr = err
	}
	m.last = s
	m.sp = push(m.sp, s.Setpoint)
	m.fb = push(m.fb, s.Feedback)
}

func push(xs []float64, v float64) []float64 {
	if len(xs) == historyLen {
		copy(xs, xs[1:])
		xs = xs[:historyLen-1]
	}
	return append(xs, v)
}

func (m *Model) View() string {
	var b strings.Builder

	status := running.Render("running")
	if m.paused {
		status = paused.Render("paused")
	}
	b.WriteString(title.Render("fixpid live") + "  " + status +
		label.Render(fmt.Sprintf("  x%d  t=%.2fs", m.speed, m.last.Time)) + "\n\n")

	if len(m.sp) > 1 {
		plotWidth := m.width - 12
		if plotWidth < 20 {
			plotWidth = 20
		}
		if plotWidth > historyLen {
			plotWidth = historyLen
		}
		graph := asciigraph.PlotMany([][]float64{m.sp, m.fb},
			asciigraph.Height(12),
			asciigraph.Width(plotWidth),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green),
			asciigraph.Caption("setpoint (blue) / feedback (green)"),
		)
		b.WriteString(graph + "\n\n")
	}

	stats := []string{
		stat("setpoint", m.last.Setpoint),
		stat("feedback", m.last.Feedback),
		stat("error", m.last.Error()),
		stat("output", m.last.Output),
		stat("duty %", m.last.Duty),
	}
	if _, ok := m.loop.Mapper().(*drive.Servo); ok {
		stats = append(stats, stat("pulse ms", drive.PulseWidth(m.last.Duty, drive.ServoPeriod)*1000))
	}
	b.WriteString(panel.Render(lipgloss.JoinHorizontal(lipgloss.Top, stats...)) + "\n")

	if m.failures > 0 {
		b.WriteString(alert.Render(fmt.Sprintf("%d failed steps, last: %v", m.failures, m.lastErr)) + "\n")
	}
	b.WriteString(hint.Render("space pause  n step  ↑/↓ setpoint  +/- speed  q quit"))
	return b.String()
}

func stat(name string, v float64) string {
	return lipgloss.NewStyle().Width(16).Render(label.Render(name) + "\n" + value.Render(fmt.Sprintf("%.3f", v)))
}

// Run blocks until the user quits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
