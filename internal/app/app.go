package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pankudi/visualizer/internal/client"
	"github.com/pankudi/visualizer/internal/config"
	"github.com/pankudi/visualizer/internal/poller"
	"github.com/pankudi/visualizer/internal/session"
	"github.com/pankudi/visualizer/internal/theme"
	"github.com/pankudi/visualizer/internal/views/debug"
	"github.com/pankudi/visualizer/internal/views/help"
	"github.com/pankudi/visualizer/internal/views/orb"
	"github.com/pankudi/visualizer/internal/views/start"
	"github.com/pankudi/visualizer/internal/views/status"
)

// Screen identifies the active top-level view.
type Screen int

const (
	ScreenStart Screen = iota
	ScreenMonitor
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDebug
	OverlayHelp
)

// enterMonitorMsg fires once the start animation delay has elapsed.
type enterMonitorMsg struct{}

// Model is the root Bubble Tea model.
type Model struct {
	http      *client.HTTPClient
	initiator *session.Initiator
	cfg       config.ClientConfig
	ctx       context.Context
	cancel    context.CancelFunc

	// newPoller builds the poller for each monitoring view.
	newPoller func() *poller.Poller
	poller    *poller.Poller

	keys    KeyMap
	width   int
	height  int
	screen  Screen
	overlay Overlay

	// Sub-views.
	start     start.Model
	orb       orb.Model
	statusBar status.Model
	debug     debug.Model
	help      *help.Model
}

// New creates the root model.
func New(cfg config.ClientConfig, http *client.HTTPClient) Model {
	ctx, cancel := context.WithCancel(context.Background())
	h := help.New()
	backend := cfg.BackendURL
	if http != nil {
		backend = http.BaseURL()
	}
	return Model{
		http:      http,
		initiator: session.NewInitiator(http),
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		newPoller: func() *poller.Poller {
			return poller.New(http, cfg.PollInterval)
		},
		keys:      DefaultKeyMap(),
		start:     start.New(),
		orb:       orb.New(),
		statusBar: status.New(backend),
		debug:     debug.New(),
		help:      &h,
	}
}

// Init starts the start screen's spinner.
func (m Model) Init() tea.Cmd {
	return m.start.Init()
}

// Close stops any active poller and cancels outstanding work. It is safe to
// call on the final model returned by tea.Program.Run.
func (m Model) Close() {
	if m.poller != nil {
		m.poller.Stop()
	}
	m.cancel()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.start.Width = msg.Width
		m.start.Height = msg.Height
		m.statusBar.Width = msg.Width
		m.orb.Width = msg.Width
		m.orb.Height = max(msg.Height-4, 5)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.start, cmd = m.start.Update(msg)
		return m, cmd

	case orb.FrameMsg:
		if m.screen != ScreenMonitor {
			return m, nil
		}
		var cmd tea.Cmd
		m.orb, cmd = m.orb.Update(msg)
		return m, cmd

	case session.StartedMsg:
		m.debug.Add("sess", fmt.Sprintf("session started (%s)", ackStatus(msg.Ack)))
		if m.screen != ScreenStart {
			return m, nil
		}
		if m.cfg.TransitionDelay <= 0 {
			return m.enterMonitor()
		}
		return m, tea.Tick(m.cfg.TransitionDelay, func(time.Time) tea.Msg {
			return enterMonitorMsg{}
		})

	case session.StartFailedMsg:
		m.start.Starting = false
		m.start.LastError = msg.Err.Error()
		m.debug.Add("err", msg.Err.Error())
		return m, nil

	case enterMonitorMsg:
		if m.screen != ScreenStart || !m.start.Starting {
			return m, nil
		}
		return m.enterMonitor()

	case poller.StateMsg:
		if m.poller == nil || msg.PollerID != m.poller.ID() {
			// Stale update from a poller that has been stopped.
			return m, nil
		}
		m.applyUpdate(msg.Update)
		return m, m.poller.Listen()
	}

	return m, nil
}

// enterMonitor switches to the monitoring view and starts a fresh poller.
func (m Model) enterMonitor() (tea.Model, tea.Cmd) {
	m.stopPoller()

	m.start.Starting = false
	m.start.LastError = ""
	m.screen = ScreenMonitor

	w, h := m.orb.Width, m.orb.Height
	m.orb = orb.New()
	m.orb.Width, m.orb.Height = w, h
	m.statusBar.State = client.Idle
	m.statusBar.Health = poller.Health{}

	m.poller = m.newPoller()
	m.poller.Start(m.ctx)
	m.statusBar.PollerID = m.poller.ID()

	log.Printf("entered monitoring view (poller %s)", m.poller.ID())
	m.debug.Add("nav", "monitoring view")
	return m, tea.Batch(m.poller.Listen(), m.orb.Restart())
}

// leaveMonitor stops the poller and returns to the start screen.
func (m Model) leaveMonitor() (tea.Model, tea.Cmd) {
	m.stopPoller()
	m.screen = ScreenStart
	m.start.Starting = false
	log.Printf("left monitoring view")
	m.debug.Add("nav", "start view")
	return m, nil
}

func (m *Model) stopPoller() {
	if m.poller == nil {
		return
	}
	m.poller.Stop()
	m.poller = nil
	m.statusBar.PollerID = ""
}

func (m *Model) applyUpdate(u poller.Update) {
	prev := m.statusBar.State
	m.statusBar.State = u.State
	m.statusBar.Health = m.poller.Health()
	m.orb.SetState(u.State)

	switch {
	case u.Err != nil:
		m.debug.Add("err", u.Err.Error())
	case u.State != prev:
		m.debug.Add("poll", fmt.Sprintf("%s -> %s", prev, u.State))
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.Close()
		return m, tea.Quit
	}

	if m.overlay != OverlayNone {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
		return m, nil

	case m.screen == ScreenStart && key.Matches(msg, m.keys.Start):
		if m.start.Starting {
			return m, nil
		}
		cmd := m.initiator.StartCmd(m.ctx)
		if cmd == nil {
			return m, nil
		}
		m.start.Starting = true
		m.start.LastError = ""
		m.debug.Add("sess", "starting session")
		return m, cmd

	case m.screen == ScreenMonitor && key.Matches(msg, m.keys.Back):
		return m.leaveMonitor()
	}

	return m, nil
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	switch m.overlay {
	case OverlayDebug:
		return m.debug.View(m.width, m.height)
	case OverlayHelp:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View(m.width))
	}

	if m.screen == ScreenStart {
		return m.start.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		m.orb.View(),
		theme.StyleDimmed.Render("  esc:back  d:events  ?:help  q:quit"),
	)
}

// Screen returns the active top-level view.
func (m Model) Screen() Screen { return m.screen }

func ackStatus(ack client.StartAck) string {
	if ack.Status == "" {
		return "ok"
	}
	return ack.Status
}
