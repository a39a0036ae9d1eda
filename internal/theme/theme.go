// Package theme provides the Lip Gloss color palette and reusable styles
// for the Pankudi TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Visual state colors.
var (
	ColorIdle      = lipgloss.Color("#7c3aed")
	ColorListening = lipgloss.Color("#a78bfa")
	ColorThinking  = lipgloss.Color("#e5e7eb")
	ColorSpeaking  = lipgloss.Color("#ec4899")
	ColorDefault   = lipgloss.Color("#9ca3af")
)

// Orb accents.
var (
	ColorGlow      = lipgloss.Color("#f5d0fe")
	ColorDotWhite  = lipgloss.Color("#ffffff")
	ColorDotPurple = lipgloss.Color("#c084fc")
	ColorDotPink   = lipgloss.Color("#f472b6")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#000000")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// StateColor returns the Lip Gloss color for a visual state name. Unknown
// names get the idle color, matching the orb's own fallback.
func StateColor(state string) lipgloss.Color {
	switch state {
	case "idle":
		return ColorIdle
	case "listening":
		return ColorListening
	case "thinking":
		return ColorThinking
	case "speaking":
		return ColorSpeaking
	default:
		return ColorIdle
	}
}

// HealthColor returns the color for a poll health status.
func HealthColor(status string) lipgloss.Color {
	switch status {
	case "healthy":
		return ColorHealthy
	case "degraded":
		return ColorWarning
	case "failed":
		return ColorDanger
	default:
		return ColorDimmed
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleButton = lipgloss.NewStyle().
		Foreground(ColorBright).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBright).
		Padding(1, 4)
)

// StateGlyph returns a Unicode glyph representing a visual state.
func StateGlyph(state string) string {
	switch state {
	case "listening":
		return "◉"
	case "thinking":
		return "◌"
	case "speaking":
		return "●"
	default:
		return "○"
	}
}
