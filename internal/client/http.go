package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxBodySize = 1 << 20

// HTTPClient makes REST calls to the voice-assistant backend.
type HTTPClient struct {
	baseURL string
	client  *http.Client

	// Zero disables the per-call timeout.
	startTimeout  time.Duration
	statusTimeout time.Duration
}

// NewHTTPClient creates a client targeting the given base URL (e.g.
// "http://localhost:8000"). No request timeout is applied unless
// SetTimeouts is called.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// SetTimeouts bounds the start-session and status calls. Zero leaves a call
// unbounded.
func (c *HTTPClient) SetTimeouts(start, status time.Duration) {
	c.startTimeout = start
	c.statusTimeout = status
}

// BaseURL returns the backend address this client targets.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// StartSession sends POST /start-session. Any 2xx is success; the body is
// decoded best-effort and never fails the call.
func (c *HTTPClient) StartSession(ctx context.Context) (StartAck, error) {
	ctx, cancel := withTimeout(ctx, c.startTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/start-session", nil)
	if err != nil {
		return StartAck{}, &StartError{Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return StartAck{}, &StartError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StartAck{}, &StartError{Status: resp.StatusCode, Body: truncate(body)}
	}

	var ack StartAck
	_ = json.Unmarshal(body, &ack)
	ack.At = time.Now()
	return ack, nil
}

// Status fetches GET /status and decodes the report. Transport failures and
// non-2xx answers return *PollError; unusable bodies return *MalformedReport.
func (c *HTTPClient) Status(ctx context.Context) (StatusReport, error) {
	ctx, cancel := withTimeout(ctx, c.statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return StatusReport{}, &PollError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return StatusReport{}, &PollError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StatusReport{}, &PollError{Status: resp.StatusCode, Body: truncate(body)}
	}
	if err != nil {
		return StatusReport{}, &PollError{Err: err}
	}
	return decodeStatusReport(body)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
