// Package tui implements the Bubble Tea live viewer for the decision log.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/termpilot/termpilot/internal/db"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	yesStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	noStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	abortStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

type refreshMsg struct {
	decisions []*db.Decision
	err       error
}

// Model is the decision-log viewer model.
type Model struct {
	store *db.DB
	limit int

	ready     bool
	width     int
	height    int
	decisions []*db.Decision
	err       error
}

// New creates a viewer over the given store showing the latest limit rows.
func New(store *db.DB, limit int) Model {
	if limit <= 0 {
		limit = 50
	}
	return Model{store: store, limit: limit}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh, tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refresh
		}
	case refreshMsg:
		m.decisions = msg.decisions
		m.err = msg.err
	case tickMsg:
		return m, tea.Batch(m.refresh, tick())
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	s := titleStyle.Render("termpilot decisions") + "\n\n"
	if m.err != nil {
		s += abortStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}

	rows := m.decisions
	if max := m.height - 5; max > 0 && len(rows) > max {
		rows = rows[len(rows)-max:]
	}

	if len(rows) == 0 {
		s += timeStyle.Render("no decisions yet") + "\n"
	}
	for _, d := range rows {
		s += fmt.Sprintf("%s  %-6s  %s  %s\n",
			timeStyle.Render(d.CreatedAt.Local().Format("15:04:05")),
			d.Kind,
			styleFor(d.Outcome).Render(fmt.Sprintf("%-9s", d.Outcome)),
			truncate(d.Input, m.width-30),
		)
	}

	s += "\n" + footerStyle.Render("q quit · r refresh")
	return s
}

func (m Model) refresh() tea.Msg {
	decisions, err := m.store.ListDecisions(db.DecisionFilter{})
	if err == nil && len(decisions) > m.limit {
		decisions = decisions[len(decisions)-m.limit:]
	}
	return refreshMsg{decisions: decisions, err: err}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func styleFor(outcome string) lipgloss.Style {
	switch outcome {
	case "yes", "shell":
		return yesStyle
	case "no", "custom", "assistant":
		return noStyle
	default:
		return abortStyle
	}
}

func truncate(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// Run starts the viewer.
func Run(store *db.DB, limit int) error {
	p := tea.NewProgram(New(store, limit), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
