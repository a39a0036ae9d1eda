// Package client provides the HTTP client for the Pankudi voice-assistant
// backend. Types mirror the backend wire protocol without importing backend
// packages.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// VisualState is the session phase shown to the user. The renderer only
// ever receives one of the four constants below.
type VisualState string

const (
	Idle      VisualState = "idle"
	Listening VisualState = "listening"
	Thinking  VisualState = "thinking"
	Speaking  VisualState = "speaking"
)

// VisualStates lists every recognized state in lifecycle order.
var VisualStates = []VisualState{Idle, Listening, Thinking, Speaking}

// ParseVisualState reports whether s is exactly one of the recognized
// states. Matching is case-sensitive and does not trim.
func ParseVisualState(s string) (VisualState, bool) {
	switch VisualState(s) {
	case Idle, Listening, Thinking, Speaking:
		return VisualState(s), true
	}
	return "", false
}

// Valid reports whether v is a recognized state.
func (v VisualState) Valid() bool {
	_, ok := ParseVisualState(string(v))
	return ok
}

func (v VisualState) String() string { return string(v) }

// StatusReport is one decoded /status body. State is nil when the field is
// absent or null.
type StatusReport struct {
	State *string
}

// Normalize returns the state adopted after receiving report. Anything that
// is not exactly a recognized state keeps prev.
func Normalize(prev VisualState, report StatusReport) VisualState {
	if report.State == nil {
		return prev
	}
	if v, ok := ParseVisualState(*report.State); ok {
		return v
	}
	return prev
}

// decodeStatusReport parses a /status body. The body must be a JSON object;
// a present, non-null state must be a string.
func decodeStatusReport(body []byte) (StatusReport, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return StatusReport{}, &MalformedReport{Body: truncate(body), Err: err}
	}
	if fields == nil {
		// Top-level JSON null.
		return StatusReport{}, &MalformedReport{Body: truncate(body), Err: errors.New("body is null")}
	}

	raw, ok := fields["state"]
	if !ok || string(raw) == "null" {
		return StatusReport{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return StatusReport{}, &MalformedReport{
			Body: truncate(body),
			Err:  fmt.Errorf("state is not a string: %s", truncate(raw)),
		}
	}
	return StatusReport{State: &s}, nil
}

// StartAck is the acknowledgement of a successful /start-session call.
type StartAck struct {
	// Status is the backend's informational status ("started" or
	// "already_active"); empty when the body could not be decoded.
	Status string    `json:"status"`
	At     time.Time `json:"-"`
}

// ErrStartInFlight is returned when a session start is requested while a
// previous one has not finished.
var ErrStartInFlight = errors.New("session start already in flight")

// StartError means the session-start request failed. Status is zero for
// transport-level failures.
type StartError struct {
	Status int
	Body   string
	Err    error
}

func (e *StartError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("start session: HTTP %d %s", e.Status, e.Body)
	}
	return fmt.Sprintf("start session: %v", e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// PollError means a single status query failed at the transport level or
// returned a non-2xx status.
type PollError struct {
	Status int
	Body   string
	Err    error
}

func (e *PollError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("GET /status: HTTP %d %s", e.Status, e.Body)
	}
	return fmt.Sprintf("GET /status: %v", e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// MalformedReport means /status answered 2xx with a body that is not a
// usable report.
type MalformedReport struct {
	Body string
	Err  error
}

func (e *MalformedReport) Error() string {
	return fmt.Sprintf("malformed status report %q: %v", e.Body, e.Err)
}

func (e *MalformedReport) Unwrap() error { return e.Err }

const maxBodyInError = 120

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxBodyInError {
		s = s[:maxBodyInError] + "..."
	}
	return s
}
