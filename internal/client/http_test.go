package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStartSessionSuccess(t *testing.T) {
	var gotMethod, gotPath string
	var gotLen int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotLen = r.Method, r.URL.Path, r.ContentLength
		w.Write([]byte(`{"status":"started"}`))
	}))
	defer srv.Close()

	ack, err := NewHTTPClient(srv.URL + "/").StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/start-session" {
		t.Errorf("request = %s %s, want POST /start-session", gotMethod, gotPath)
	}
	if gotLen > 0 {
		t.Errorf("request body length = %d, want none", gotLen)
	}
	if ack.Status != "started" {
		t.Errorf("ack.Status = %q, want started", ack.Status)
	}
	if ack.At.IsZero() {
		t.Error("ack.At should be set")
	}
}

func TestStartSessionIgnoresBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := NewHTTPClient(srv.URL).StartSession(context.Background()); err != nil {
		t.Fatalf("2xx with non-JSON body should succeed, got %v", err)
	}
}

func TestStartSessionHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).StartSession(context.Background())
	var se *StartError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StartError", err)
	}
	if se.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", se.Status)
	}
}

func TestStartSessionNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url).StartSession(context.Background())
	var se *StartError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StartError", err)
	}
	if se.Status != 0 || se.Err == nil {
		t.Errorf("transport failure should carry cause and zero status, got %+v", se)
	}
}

func TestStartSessionTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewHTTPClient(srv.URL)
	c.SetTimeouts(50*time.Millisecond, 0)
	_, err := c.StartSession(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		body      string
		wantState string
		wantErr   string // "poll", "malformed" or ""
	}{
		{"speaking", 200, `{"state":"speaking"}`, "speaking", ""},
		{"empty object", 200, `{}`, "", ""},
		{"server error", 503, `down`, "", "poll"},
		{"not found", 404, `{"state":"idle"}`, "", "poll"},
		{"bad json", 200, `{"state":`, "", "malformed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/status" {
					t.Errorf("request = %s %s, want GET /status", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			report, err := NewHTTPClient(srv.URL).Status(context.Background())
			switch tt.wantErr {
			case "poll":
				var pe *PollError
				if !errors.As(err, &pe) {
					t.Fatalf("err = %v, want *PollError", err)
				}
				if pe.Status != tt.code {
					t.Errorf("Status = %d, want %d", pe.Status, tt.code)
				}
				return
			case "malformed":
				var mr *MalformedReport
				if !errors.As(err, &mr) {
					t.Fatalf("err = %v, want *MalformedReport", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Status: %v", err)
			}
			if tt.wantState == "" {
				if report.State != nil {
					t.Errorf("State = %q, want nil", *report.State)
				}
				return
			}
			if report.State == nil || *report.State != tt.wantState {
				t.Errorf("State = %v, want %q", report.State, tt.wantState)
			}
		})
	}
}

func TestStatusNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url).Status(context.Background())
	var pe *PollError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PollError", err)
	}
}
