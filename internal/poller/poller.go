// Package poller keeps a local visual state in step with the state reported
// by the voice-assistant backend.
//
// A Poller queries /status immediately on Start and then once per interval.
// Ticks run sequentially on a single goroutine; a slow request delays the
// next tick and missed ticks are dropped rather than queued. Failed or
// malformed reports never change the visual state. After Stop returns no
// further request is issued and a response still in flight is discarded.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/pankudi/visualizer/internal/client"
)

// DefaultInterval is the fixed polling cadence.
const DefaultInterval = 500 * time.Millisecond

// StatusSource answers status queries. *client.HTTPClient satisfies it.
type StatusSource interface {
	Status(ctx context.Context) (client.StatusReport, error)
}

// Update is one published tick result.
type Update struct {
	PollerID string
	Seq      uint64
	State    client.VisualState
	// Err is the tick's failure, if any. State is unchanged when set.
	Err error
}

// Poller owns the current visual state for one monitoring view.
type Poller struct {
	id            string
	src           StatusSource
	interval      time.Duration
	failThreshold int

	mu      sync.Mutex
	state   client.VisualState
	running bool
	gen     uint64
	seq     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	health  pollHealth

	// updates is a latest-value mailbox of capacity one.
	updates chan Update
}

// New creates a stopped poller. A non-positive interval selects
// DefaultInterval.
func New(src StatusSource, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		id:            uuid.NewString(),
		src:           src,
		interval:      interval,
		failThreshold: DefaultFailThreshold,
		state:         client.Idle,
		updates:       make(chan Update, 1),
	}
}

// ID identifies this poller in logs and messages.
func (p *Poller) ID() string { return p.id }

// Current returns the latest visual state.
func (p *Poller) Current() client.VisualState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Running reports whether the polling loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Health returns a copy of the failure tracking.
func (p *Poller) Health() Health {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.health.snapshot(p.failThreshold)
}

// Updates delivers the state published by every tick. Only the most recent
// unread update is kept.
func (p *Poller) Updates() <-chan Update { return p.updates }

// Start begins polling. It is a no-op while the poller is already running.
// The loop ends when Stop is called or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.running = true
	p.gen++
	p.cancel = cancel
	p.done = make(chan struct{})
	p.stopped = make(chan struct{})
	select {
	case <-p.updates:
	default:
	}

	log.Printf("[poller %s] started, interval %v", p.shortID(), p.interval)
	go p.run(ctx, p.gen, p.done)
}

// Stop cancels the polling loop. It does not wait for an in-flight request;
// that request's result is discarded. Stop is safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	p.cancel()
	close(p.stopped)
	log.Printf("[poller %s] stopped", p.shortID())
}

// release marks a loop that ended through its parent context as stopped.
func (p *Poller) release(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running && p.gen == gen {
		p.running = false
		p.cancel()
		close(p.stopped)
	}
}

// Done is closed when the current loop goroutine has exited. It returns nil
// if the poller was never started.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *Poller) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)
	defer p.release(gen)

	p.tick(ctx, gen)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, gen)
		}
	}
}

// tick performs one status query and publishes the resulting state.
func (p *Poller) tick(ctx context.Context, gen uint64) {
	// select may pick a ready tick over a cancelled context.
	if ctx.Err() != nil {
		return
	}

	report, err := p.query(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.gen != gen {
		return
	}

	now := time.Now()
	if err != nil {
		p.health.recordFailure(err, now)
		log.Printf("[poller %s] tick failed, keeping %s: %v", p.shortID(), p.state, err)
	} else {
		p.health.recordSuccess(now)
		next := client.Normalize(p.state, report)
		switch {
		case report.State != nil && next != client.VisualState(*report.State):
			log.Printf("[poller %s] unrecognized state %q, keeping %s", p.shortID(), *report.State, p.state)
		case next != p.state:
			log.Printf("[poller %s] state %s -> %s", p.shortID(), p.state, next)
		}
		p.state = next
	}

	p.seq++
	p.publishLocked(Update{PollerID: p.id, Seq: p.seq, State: p.state, Err: err})
}

// query calls the source and converts a panic into a PollError so that no
// failure escapes the loop.
func (p *Poller) query(ctx context.Context) (report client.StatusReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &client.PollError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	report, err = p.src.Status(ctx)
	if err != nil {
		var pe *client.PollError
		var mr *client.MalformedReport
		if !errors.As(err, &pe) && !errors.As(err, &mr) {
			err = &client.PollError{Err: err}
		}
	}
	return report, err
}

// publishLocked replaces any unread update. Caller must hold p.mu, which
// makes it the only sender, so the send below cannot block.
func (p *Poller) publishLocked(u Update) {
	select {
	case <-p.updates:
	default:
	}
	p.updates <- u
}

func (p *Poller) shortID() string {
	if len(p.id) >= 8 {
		return p.id[:8]
	}
	return p.id
}

// --- Bubble Tea messages ---

// StateMsg carries one published update to the root model.
type StateMsg struct{ Update }

// Listen returns a command that waits for the next published update. The
// caller re-arms it after each StateMsg. The command returns nil once the
// poller is stopped, and Listen returns nil if it was never started.
func (p *Poller) Listen() tea.Cmd {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped == nil {
		return nil
	}

	return func() tea.Msg {
		select {
		case <-stopped:
			return nil
		case u := <-p.updates:
			return StateMsg{Update: u}
		}
	}
}
