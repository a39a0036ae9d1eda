// Package start renders the pre-session screen with its start trigger.
package start

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pankudi/visualizer/internal/theme"
)

const buttonLabel = "Start Pankudi"

// Model holds the start screen state.
type Model struct {
	Width  int
	Height int

	// Starting hides the trigger while a session start is in flight.
	Starting bool
	// LastError is shown as a dim hint after a failed start.
	LastError string

	spinner spinner.Model
}

// New creates a start screen.
func New() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorListening)
	return Model{spinner: sp}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update forwards spinner ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the screen centered in Width x Height.
func (m Model) View() string {
	var body string
	if m.Starting {
		// Keep the button's footprint so the layout does not jump.
		body = lipgloss.NewStyle().Padding(2, 4).Render(m.spinner.View())
	} else {
		body = theme.StyleButton.Render(buttonLabel)
	}

	hint := theme.StyleDimmed.Render("enter: start  ?: help  q: quit")
	if m.LastError != "" && !m.Starting {
		hint = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("Could not start session. Press enter to retry.") +
			"\n" + hint
	}

	content := lipgloss.JoinVertical(lipgloss.Center, body, "", hint)
	if m.Width == 0 || m.Height == 0 {
		return content
	}
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content)
}
