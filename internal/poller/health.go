package poller

import "time"

// HealthStatus summarizes recent poll outcomes.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusDegraded HealthStatus = "degraded"
	StatusFailed   HealthStatus = "failed"
)

// DefaultFailThreshold is the number of consecutive failed ticks after which
// the backend is reported as failed.
const DefaultFailThreshold = 5

// Health is a point-in-time copy of the poller's failure tracking.
type Health struct {
	Status              HealthStatus
	ConsecutiveFailures int
	TotalFailures       int
	LastError           string
	LastSuccess         time.Time
	LastFailure         time.Time
}

// pollHealth tracks consecutive failure counts. Fields are guarded by the
// owning Poller's mutex.
type pollHealth struct {
	consecutive int
	total       int
	lastErr     string
	lastSuccess time.Time
	lastFailure time.Time
}

func (h *pollHealth) recordSuccess(now time.Time) {
	h.consecutive = 0
	h.lastErr = ""
	h.lastSuccess = now
}

func (h *pollHealth) recordFailure(err error, now time.Time) {
	h.consecutive++
	h.total++
	h.lastErr = err.Error()
	h.lastFailure = now
}

func (h *pollHealth) status(threshold int) HealthStatus {
	switch {
	case h.consecutive == 0:
		return StatusHealthy
	case h.consecutive >= threshold:
		return StatusFailed
	default:
		return StatusDegraded
	}
}

func (h *pollHealth) snapshot(threshold int) Health {
	return Health{
		Status:              h.status(threshold),
		ConsecutiveFailures: h.consecutive,
		TotalFailures:       h.total,
		LastError:           h.lastErr,
		LastSuccess:         h.lastSuccess,
		LastFailure:         h.lastFailure,
	}
}
