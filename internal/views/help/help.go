// Package help renders the key and state reference overlay from markdown.
package help

import (
	_ "embed"
	"log"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pankudi/visualizer/internal/theme"
)

//go:embed help.md
var source string

// Model caches the rendered help text per width.
type Model struct {
	width    int
	rendered string
}

// New creates a help overlay.
func New() Model {
	return Model{}
}

// View renders the overlay for the given terminal width.
func (m *Model) View(width int) string {
	innerW := width - 8
	if innerW < 30 {
		innerW = 30
	}
	if m.rendered == "" || m.width != innerW {
		m.width = innerW
		m.rendered = render(innerW)
	}
	return lipgloss.NewStyle().
		Padding(0, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(m.rendered + theme.StyleDimmed.Render("esc:close"))
}

func render(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Printf("help renderer: %v", err)
		return source
	}
	out, err := r.Render(source)
	if err != nil {
		log.Printf("help render: %v", err)
		return source
	}
	return out
}
