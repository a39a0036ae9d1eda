// Package session implements the one-shot session-start handshake with the
// voice-assistant backend.
package session

import (
	"context"
	"errors"
	"log"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pankudi/visualizer/internal/client"
)

// Starter issues the session-start request. *client.HTTPClient satisfies it.
type Starter interface {
	StartSession(ctx context.Context) (client.StartAck, error)
}

// Initiator starts backend sessions. At most one start is in flight at a
// time; failures are reported, never retried.
type Initiator struct {
	starter  Starter
	starting atomic.Bool
}

// NewInitiator creates an initiator that sends requests through starter.
func NewInitiator(starter Starter) *Initiator {
	return &Initiator{starter: starter}
}

// Starting reports whether a session start is in flight.
func (i *Initiator) Starting() bool {
	return i.starting.Load()
}

// Start sends exactly one session-start request unless another is already
// in flight, in which case it returns client.ErrStartInFlight without
// touching the network. Every failure is a *client.StartError.
func (i *Initiator) Start(ctx context.Context) (client.StartAck, error) {
	if !i.starting.CompareAndSwap(false, true) {
		return client.StartAck{}, client.ErrStartInFlight
	}
	return i.run(ctx)
}

// run performs the request. The caller must have claimed the starting flag;
// run releases it on every path.
func (i *Initiator) run(ctx context.Context) (client.StartAck, error) {
	defer i.starting.Store(false)

	ack, err := i.starter.StartSession(ctx)
	if err != nil {
		var se *client.StartError
		if !errors.As(err, &se) {
			err = &client.StartError{Err: err}
		}
		log.Printf("session start failed: %v", err)
		return client.StartAck{}, err
	}
	log.Printf("session started (backend status %q)", ack.Status)
	return ack, nil
}

// --- Bubble Tea messages ---

// StartedMsg is sent when the backend acknowledged the session start.
type StartedMsg struct{ Ack client.StartAck }

// StartFailedMsg is sent when the session start failed.
type StartFailedMsg struct{ Err error }

// StartCmd claims the starting flag synchronously and returns a command
// that performs the request. It returns nil when a start is already in
// flight, so repeated key presses inside one Update cycle cannot issue a
// second request.
func (i *Initiator) StartCmd(ctx context.Context) tea.Cmd {
	if !i.starting.CompareAndSwap(false, true) {
		return nil
	}
	return func() tea.Msg {
		ack, err := i.run(ctx)
		if err != nil {
			return StartFailedMsg{Err: err}
		}
		return StartedMsg{Ack: ack}
	}
}
