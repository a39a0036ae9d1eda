package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/pankudi/visualizer/internal/client"
	"github.com/pankudi/visualizer/internal/poller"
	"github.com/pankudi/visualizer/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Backend  string
	State    client.VisualState
	Health   poller.Health
	PollerID string
	Width    int
}

// New creates a status bar model.
func New(backend string) Model {
	return Model{Backend: backend, State: client.Idle}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	switch m.Health.Status {
	case poller.StatusHealthy:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● " + m.Backend)
	case poller.StatusDegraded:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(
			fmt.Sprintf("◐ %s (%d failed)", m.Backend, m.Health.ConsecutiveFailures))
	case poller.StatusFailed:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ " + m.Backend + " unreachable")
	default:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("○ " + m.Backend)
	}

	stateStr := lipgloss.NewStyle().Foreground(theme.StateColor(string(m.State))).Render(
		theme.StateGlyph(string(m.State)) + " " + string(m.State))

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + stateStr
	if len(m.PollerID) >= 8 {
		content += sep + theme.StyleDimmed.Render("poller "+m.PollerID[:8])
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
