// Package mock is a stand-in voice-assistant backend. It runs the
// assistant's session state machine on a timed script and serves it over
// the same two HTTP endpoints the visualizer polls.
package mock

import (
	"log"
	"slices"
	"sync"

	"github.com/pankudi/visualizer/internal/client"
)

// AppState is the assistant's internal state.
type AppState string

const (
	StateIdle          AppState = "IDLE"
	StateActiveSession AppState = "ACTIVE_SESSION"
	StateThinking      AppState = "THINKING"
	StateSpeaking      AppState = "SPEAKING"
)

// stateMap is the wire mapping served by GET /status.
var stateMap = map[AppState]client.VisualState{
	StateIdle:          client.Idle,
	StateActiveSession: client.Listening,
	StateThinking:      client.Thinking,
	StateSpeaking:      client.Speaking,
}

// Visual returns the value reported to the visualizer. Unknown states
// report idle.
func (s AppState) Visual() client.VisualState {
	if v, ok := stateMap[s]; ok {
		return v
	}
	return client.Idle
}

// Observer is called with the new state after every transition.
type Observer func(AppState)

// StateManager holds the current state and enforces the allowed
// transitions. It is safe for concurrent use.
type StateManager struct {
	mu        sync.Mutex
	state     AppState
	observers []Observer
}

func NewStateManager() *StateManager {
	return &StateManager{state: StateIdle}
}

func (m *StateManager) State() AppState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AddObserver registers fn. Observers run outside the lock.
func (m *StateManager) AddObserver(fn Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// WakeDetected opens a session. It reports whether the manager was idle.
func (m *StateManager) WakeDetected() bool {
	return m.transition(StateActiveSession, StateIdle)
}

// SessionActive returns to listening from any state.
func (m *StateManager) SessionActive() {
	m.transition(StateActiveSession)
}

// StartThinking is only valid while listening.
func (m *StateManager) StartThinking() bool {
	return m.transition(StateThinking, StateActiveSession)
}

// StartSpeaking is valid from listening (greeting) or thinking (response).
func (m *StateManager) StartSpeaking() bool {
	return m.transition(StateSpeaking, StateActiveSession, StateThinking)
}

// FinishSpeaking goes back to listening.
func (m *StateManager) FinishSpeaking() bool {
	return m.transition(StateActiveSession, StateSpeaking)
}

// SessionEnd returns to idle from any state.
func (m *StateManager) SessionEnd() {
	m.transition(StateIdle)
}

// transition moves to next if the current state is one of from (any state
// when from is empty). Moving to the current state is a silent no-op that
// still counts as allowed.
func (m *StateManager) transition(next AppState, from ...AppState) bool {
	m.mu.Lock()
	cur := m.state
	if len(from) > 0 && !slices.Contains(from, cur) {
		m.mu.Unlock()
		return false
	}
	if cur == next {
		m.mu.Unlock()
		return true
	}
	m.state = next
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	log.Printf("State transition: %s -> %s", cur, next)
	for _, fn := range observers {
		notify(fn, next)
	}
	return true
}

func notify(fn Observer, s AppState) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error in state observer: %v", r)
		}
	}()
	fn(s)
}
