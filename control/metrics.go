// File: control/metrics.go
// Runtime counter registry for the echo-server harness. Thread-safe with
// dynamic counter registration.
// License: Apache-2.0

package control

import (
	"sync"
	"time"
)

// Metrics holds named monotonic counters.
type Metrics struct {
	mu       sync.RWMutex
	counters map[string]int64
	updated  time.Time
}

// NewMetrics creates an empty registry.
func NewMetrics() *Metrics {
	return &Metrics{counters: make(map[string]int64)}
}

// Add increments a counter, registering it on first use.
func (m *Metrics) Add(name string, delta int64) {
	m.mu.Lock()
	m.counters[name] += delta
	m.updated = time.Now()
	m.mu.Unlock()
}

// Get returns a single counter value.
func (m *Metrics) Get(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

// Updated reports when any counter last changed.
func (m *Metrics) Updated() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updated
}
