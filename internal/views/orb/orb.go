// Package orb renders the animated circle that represents the assistant's
// visual state.
package orb

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/pankudi/visualizer/internal/client"
	"github.com/pankudi/visualizer/internal/theme"
)

const fps = 30

// Target radii in terminal rows per state.
var radii = map[client.VisualState]float64{
	client.Idle:      8,
	client.Listening: 9,
	client.Thinking:  8,
	client.Speaking:  10,
}

// FrameMsg advances the animation by one frame. Frames from an older
// animation loop are ignored.
type FrameMsg struct{ loop int }

func tick(loop int) tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg {
		return FrameMsg{loop: loop}
	})
}

// Model holds the orb's animation state. The zero value is not usable;
// call New.
type Model struct {
	Width  int
	Height int

	state    client.VisualState
	spring   harmonica.Spring
	radius   float64
	velocity float64
	target   float64
	frame    int
	loop     int
}

// New creates an orb at rest in the idle state.
func New() Model {
	return Model{
		state:  client.Idle,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.4),
		radius: radii[client.Idle],
		target: radii[client.Idle],
	}
}

// SetState selects the presentation for s. Anything unrecognized is drawn
// as idle.
func (m *Model) SetState(s client.VisualState) {
	if !s.Valid() {
		s = client.Idle
	}
	m.state = s
	m.target = radii[s]
}

// State returns the state currently drawn.
func (m Model) State() client.VisualState { return m.state }

// Radius returns the current animated base radius.
func (m Model) Radius() float64 { return m.radius }

// Restart begins a new animation loop, orphaning any frame already
// scheduled by a previous one.
func (m *Model) Restart() tea.Cmd {
	m.loop++
	return tick(m.loop)
}

// Update advances the animation on FrameMsg and re-arms the frame timer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	f, ok := msg.(FrameMsg)
	if !ok || f.loop != m.loop {
		return m, nil
	}
	m.frame++
	m.radius, m.velocity = m.spring.Update(m.radius, m.velocity, m.target)
	return m, tick(m.loop)
}

// cell classes, drawn with different styles.
const (
	cellEmpty = iota
	cellFill
	cellRing
	cellCore
	cellDotWhite
	cellDotPurple
	cellDotPink
)

// View renders the orb centered in Width x Height.
func (m Model) View() string {
	width, height := m.Width, m.Height
	if width < 10 {
		width = 10
	}
	if height < 5 {
		height = 5
	}

	r := m.animatedRadius()
	maxR := float64(height)/2 - 1
	if maxR < 1 {
		maxR = 1
	}
	scale := 1.0
	if top := radii[client.Speaking] + 1; top > maxR {
		scale = maxR / top
	}
	r *= scale

	cx, cy := float64(width)/2, float64(height)/2
	dots := m.dotPositions(r)

	lines := make([]string, height)
	for y := 0; y < height; y++ {
		row := make([]int, width)
		for x := 0; x < width; x++ {
			// Terminal cells are about twice as tall as wide.
			dx := (float64(x) + 0.5 - cx) / 2
			dy := float64(y) + 0.5 - cy
			row[x] = m.classify(math.Hypot(dx, dy), r)
		}
		for _, d := range dots {
			if d.y == y && d.x >= 0 && d.x < width {
				row[d.x] = d.class
			}
		}
		lines[y] = renderRow(row, m.state, m.frame)
	}
	return strings.Join(lines, "\n")
}

func (m Model) animatedRadius() float64 {
	t := float64(m.frame) / fps
	switch m.state {
	case client.Idle:
		return m.radius + 0.3*math.Sin(2*math.Pi*t/4)
	case client.Speaking:
		return m.radius + 0.6*math.Sin(2*math.Pi*t/1.5)
	default:
		return m.radius
	}
}

func (m Model) classify(d, r float64) int {
	switch {
	case math.Abs(d-r) < 0.5:
		return cellRing
	case d > r:
		return cellEmpty
	case m.state == client.Speaking && d < r*0.45:
		return cellCore
	case m.state == client.Thinking:
		return cellEmpty
	default:
		return cellFill
	}
}

type dot struct {
	x, y  int
	class int
}

// dotPositions returns the three orbiting dots of the thinking state, one
// revolution every three seconds.
func (m Model) dotPositions(r float64) []dot {
	if m.state != client.Thinking {
		return nil
	}
	width, height := m.Width, m.Height
	if width < 10 {
		width = 10
	}
	if height < 5 {
		height = 5
	}
	cx, cy := float64(width)/2, float64(height)/2
	base := 2 * math.Pi * float64(m.frame) / (3 * fps)
	classes := []int{cellDotWhite, cellDotPurple, cellDotPink}
	out := make([]dot, len(classes))
	for i, c := range classes {
		a := base + float64(i)*2*math.Pi/3
		out[i] = dot{
			x:     int(cx + 2*r*math.Cos(a)),
			y:     int(cy + r*math.Sin(a)),
			class: c,
		}
	}
	return out
}

func renderRow(row []int, state client.VisualState, frame int) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i] == row[start] {
			continue
		}
		b.WriteString(renderRun(row[start], i-start, state, frame))
		start = i
	}
	return b.String()
}

func renderRun(class, n int, state client.VisualState, frame int) string {
	color := theme.StateColor(string(state))
	switch class {
	case cellFill:
		return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("░", n))
	case cellRing:
		glyph := "●"
		// Listening flickers between a solid and a light ring.
		if state == client.Listening && (frame/4)%2 == 1 {
			glyph = "○"
		}
		if state == client.Thinking {
			glyph = "·"
		}
		return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(glyph, n))
	case cellCore:
		return lipgloss.NewStyle().Foreground(theme.ColorGlow).Render(strings.Repeat("▓", n))
	case cellDotWhite:
		return lipgloss.NewStyle().Foreground(theme.ColorDotWhite).Render(strings.Repeat("●", n))
	case cellDotPurple:
		return lipgloss.NewStyle().Foreground(theme.ColorDotPurple).Render(strings.Repeat("●", n))
	case cellDotPink:
		return lipgloss.NewStyle().Foreground(theme.ColorDotPink).Render(strings.Repeat("●", n))
	default:
		return strings.Repeat(" ", n)
	}
}
