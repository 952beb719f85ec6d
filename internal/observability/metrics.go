package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for outbound API calls.
type Metrics struct {
	mu        sync.Mutex
	callCount map[string]int64
	errCount  map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		callCount: make(map[string]int64),
		errCount:  make(map[string]int64),
	}
}

// RecordCall increments counters for completed API calls.
func (m *Metrics) RecordCall(endpoint, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := callKey(endpoint, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount[key]++
}

// RecordError increments error counters per taxonomy code.
func (m *Metrics) RecordError(endpoint, method, code string) {
	if m == nil {
		return
	}
	key := endpoint + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errCount[key]++
}

// Snapshot copies current counters, for diagnostics output.
func (m *Metrics) Snapshot() (calls map[string]int64, errs map[string]int64) {
	if m == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	calls = make(map[string]int64, len(m.callCount))
	for k, v := range m.callCount {
		calls[k] = v
	}
	errs = make(map[string]int64, len(m.errCount))
	for k, v := range m.errCount {
		errs[k] = v
	}
	return calls, errs
}

func callKey(endpoint, method string, status int) string {
	return endpoint + "|" + method + "|" + strconv.Itoa(status)
}
