package issuer

import "sync"

// Auth event names recorded by the issuer routes.
const (
	EventLoginSuccess    = "login_success"
	EventLoginBadRequest = "login_bad_request"
	EventLoginInvalid    = "login_invalid"
	EventLoginFailure    = "login_failure"
	EventMeUnauthorized  = "me_unauthorized"
	EventMeServed        = "me_served"
	EventLogout          = "logout"
)

// MetricsRecorder increments counters for auth events.
type MetricsRecorder interface {
	Increment(event string)
}

// CounterMetrics implements MetricsRecorder with in-memory counts.
type CounterMetrics struct {
	mutex  sync.Mutex
	counts map[string]int64
}

// NewCounterMetrics constructs an in-memory metrics recorder.
func NewCounterMetrics() *CounterMetrics {
	return &CounterMetrics{counts: make(map[string]int64)}
}

// Increment increases the counter for the given event.
func (recorder *CounterMetrics) Increment(event string) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.counts[event]++
}

// Count returns the current value for the given event.
func (recorder *CounterMetrics) Count(event string) int64 {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return recorder.counts[event]
}
