package mock

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pankudi/visualizer/internal/config"
)

// Assistant plays a scripted conversation on a StateManager: a spoken
// greeting, a fixed number of question/answer exchanges, then silence until
// the session times out.
type Assistant struct {
	ctx    context.Context
	states *StateManager

	mu      sync.Mutex
	timings config.MockConfig
	session int

	wg sync.WaitGroup
}

// NewAssistant creates an idle assistant. Scripted sessions end when ctx is
// cancelled.
func NewAssistant(ctx context.Context, timings config.MockConfig) *Assistant {
	return &Assistant{
		ctx:     ctx,
		states:  NewStateManager(),
		timings: timings,
	}
}

func (a *Assistant) States() *StateManager { return a.states }

// SetTimings replaces the script timings. A running session picks them up
// at its next step.
func (a *Assistant) SetTimings(t config.MockConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timings = t
}

func (a *Assistant) Timings() config.MockConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timings
}

// StartSession opens a session if the assistant is idle and reports whether
// it did. The script runs in the background.
func (a *Assistant) StartSession() bool {
	if !a.states.WakeDetected() {
		return false
	}
	a.mu.Lock()
	a.session++
	n := a.session
	a.mu.Unlock()

	log.Printf("session %d started", n)
	a.wg.Add(1)
	go a.run(n)
	return true
}

// Wait blocks until every scripted session has ended.
func (a *Assistant) Wait() { a.wg.Wait() }

func (a *Assistant) run(n int) {
	defer a.wg.Done()
	defer func() {
		a.states.SessionEnd()
		log.Printf("session %d ended", n)
	}()

	// Greeting.
	if !a.states.StartSpeaking() || !a.wait(func(t config.MockConfig) time.Duration { return t.GreetingDuration }) {
		return
	}
	a.states.FinishSpeaking()

	for i := 0; i < a.Timings().Exchanges; i++ {
		if !a.wait(func(t config.MockConfig) time.Duration { return t.UtteranceAfter }) {
			return
		}
		if !a.states.StartThinking() {
			return
		}
		if !a.wait(func(t config.MockConfig) time.Duration { return t.ThinkingDuration }) {
			return
		}
		if !a.states.StartSpeaking() {
			return
		}
		if !a.wait(func(t config.MockConfig) time.Duration { return t.SpeakingDuration }) {
			return
		}
		a.states.FinishSpeaking()
	}

	if a.wait(func(t config.MockConfig) time.Duration { return t.SilenceTimeout }) {
		log.Printf("Silence timeout. Ending session.")
	}
}

// wait sleeps for the duration pick selects from the current timings. It
// returns false if the assistant's context ends first.
func (a *Assistant) wait(pick func(config.MockConfig) time.Duration) bool {
	timer := time.NewTimer(pick(a.Timings()))
	defer timer.Stop()
	select {
	case <-a.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
