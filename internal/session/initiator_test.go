package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pankudi/visualizer/internal/client"
)

// blockingStarter counts calls and blocks each one until release is closed.
type blockingStarter struct {
	calls   atomic.Int64
	entered chan struct{}
	release chan struct{}
	err     error
}

func newBlockingStarter() *blockingStarter {
	return &blockingStarter{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (s *blockingStarter) StartSession(ctx context.Context) (client.StartAck, error) {
	s.calls.Add(1)
	s.entered <- struct{}{}
	<-s.release
	if s.err != nil {
		return client.StartAck{}, s.err
	}
	return client.StartAck{Status: "started", At: time.Now()}, nil
}

func TestStartNonReentrant(t *testing.T) {
	st := newBlockingStarter()
	in := NewInitiator(st)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := in.Start(context.Background()); err != nil {
			t.Errorf("first Start: %v", err)
		}
	}()
	<-st.entered

	if !in.Starting() {
		t.Fatal("Starting() should be true while the request is in flight")
	}
	if _, err := in.Start(context.Background()); !errors.Is(err, client.ErrStartInFlight) {
		t.Fatalf("second Start err = %v, want ErrStartInFlight", err)
	}
	if cmd := in.StartCmd(context.Background()); cmd != nil {
		t.Fatal("StartCmd should return nil while a start is in flight")
	}

	close(st.release)
	wg.Wait()

	if got := st.calls.Load(); got != 1 {
		t.Errorf("network calls = %d, want 1", got)
	}
	if in.Starting() {
		t.Error("Starting() should be false after completion")
	}
}

func TestStartFailureClearsStarting(t *testing.T) {
	st := newBlockingStarter()
	st.err = errors.New("connection refused")
	close(st.release)
	in := NewInitiator(st)

	_, err := in.Start(context.Background())
	var se *client.StartError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *client.StartError", err)
	}
	if in.Starting() {
		t.Fatal("starting flag should be cleared after failure")
	}

	// A manual retry is permitted.
	if _, err := in.Start(context.Background()); err == nil || errors.Is(err, client.ErrStartInFlight) {
		t.Fatalf("retry err = %v, want a fresh StartError", err)
	}
	if got := st.calls.Load(); got != 2 {
		t.Errorf("network calls = %d, want 2", got)
	}
}

func TestStartCmdServerError(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	in := NewInitiator(client.NewHTTPClient(srv.URL))
	cmd := in.StartCmd(context.Background())
	if cmd == nil {
		t.Fatal("StartCmd returned nil on first call")
	}
	if !in.Starting() {
		t.Fatal("StartCmd should claim the starting flag before the command runs")
	}

	msg := cmd()
	failed, ok := msg.(StartFailedMsg)
	if !ok {
		t.Fatalf("msg = %T, want StartFailedMsg", msg)
	}
	var se *client.StartError
	if !errors.As(failed.Err, &se) || se.Status != http.StatusInternalServerError {
		t.Errorf("err = %v, want StartError with status 500", failed.Err)
	}
	if in.Starting() {
		t.Error("starting flag should be cleared")
	}

	if again := in.StartCmd(context.Background()); again == nil {
		t.Fatal("second StartCmd after failure should be permitted")
	}
}

func TestStartCmdSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"already_active"}`))
	}))
	defer srv.Close()

	in := NewInitiator(client.NewHTTPClient(srv.URL))
	msg := in.StartCmd(context.Background())()
	started, ok := msg.(StartedMsg)
	if !ok {
		t.Fatalf("msg = %T, want StartedMsg", msg)
	}
	if started.Ack.Status != "already_active" {
		t.Errorf("Ack.Status = %q", started.Ack.Status)
	}
}
