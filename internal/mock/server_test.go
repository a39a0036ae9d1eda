package mock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pankudi/visualizer/internal/client"
)

func newTestServer(t *testing.T) (*Assistant, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	timings := fastTimings(0)
	timings.GreetingDuration = time.Hour
	a := NewAssistant(ctx, timings)
	srv := httptest.NewServer(NewServer(a).Router())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		a.Wait()
	})
	return a, srv
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestServer_Status(t *testing.T) {
	a, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body statusResponse
	decode(t, resp, &body)
	if body.State != "idle" {
		t.Errorf("state = %q, want idle", body.State)
	}

	a.StartSession()
	waitState(t, a.States(), StateSpeaking)
	resp, err = http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	decode(t, resp, &body)
	if body.State != "speaking" {
		t.Errorf("state = %q, want speaking during greeting", body.State)
	}
}

func TestServer_StartSession(t *testing.T) {
	_, srv := newTestServer(t)

	want := []string{AckStarted, AckAlreadyActive}
	for i, w := range want {
		resp, err := http.Post(srv.URL+"/start-session", "application/json", nil)
		if err != nil {
			t.Fatal(err)
		}
		var body startResponse
		decode(t, resp, &body)
		if body.Status != w {
			t.Errorf("call %d: status = %q, want %q", i, body.Status, w)
		}
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	_, srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/status"},
		{http.MethodGet, "/start-session"},
		{http.MethodDelete, "/status"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusMethodNotAllowed {
				t.Errorf("status code = %d, want 405", resp.StatusCode)
			}
		})
	}
}

func TestServer_CORS(t *testing.T) {
	_, srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/start-session", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

// The visualizer's own client must understand the mock's responses.
func TestServer_ClientRoundTrip(t *testing.T) {
	a, srv := newTestServer(t)
	c := client.NewHTTPClient(srv.URL)
	ctx := context.Background()

	ack, err := c.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if ack.Status != AckStarted {
		t.Errorf("ack = %q, want %q", ack.Status, AckStarted)
	}

	waitState(t, a.States(), StateSpeaking)
	report, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got := client.Normalize(client.Idle, report); got != client.Speaking {
		t.Errorf("normalized state = %q, want speaking", got)
	}
}

func TestAddr(t *testing.T) {
	if got := Addr("127.0.0.1", 8000); got != "127.0.0.1:8000" {
		t.Errorf("Addr = %q", got)
	}
}
