// Package metrics provides process-local, real-time observability for a live
// session (Ring) plus the sampling gate (Filter) and the queueing collector
// (Collector) that sit between metric producers and the write-behind store.
// Nothing in this package touches durable storage directly.
package metrics

import (
	"sync"
	"time"
)

// Sample is one in-memory observation.
type Sample struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Ring is the in-memory gauge store for one live session. Updates are cheap
// map writes under a mutex; it never performs I/O and is safe for concurrent
// use.
type Ring struct {
	mu         sync.RWMutex
	samples    map[string]Sample
	lastUpdate time.Time
}

// NewRing constructs an empty metrics ring.
func NewRing() *Ring {
	return &Ring{samples: make(map[string]Sample)}
}

// Update records the current value for a key, in memory only.
func (r *Ring) Update(key string, value float64) {
	now := time.Now()
	r.mu.Lock()
	r.samples[key] = Sample{Value: value, Timestamp: now}
	r.lastUpdate = now
	r.mu.Unlock()
}

// Increment adds one to the current value for a key.
func (r *Ring) Increment(key string) {
	now := time.Now()
	r.mu.Lock()
	s := r.samples[key]
	r.samples[key] = Sample{Value: s.Value + 1, Timestamp: now}
	r.lastUpdate = now
	r.mu.Unlock()
}

// Get returns the current sample for a key.
func (r *Ring) Get(key string) (Sample, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.samples[key]
	return s, ok
}

// Summary returns a copy of all current samples plus bookkeeping.
func (r *Ring) Summary() (map[string]Sample, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Sample, len(r.samples))
	for k, v := range r.samples {
		out[k] = v
	}
	return out, r.lastUpdate
}
