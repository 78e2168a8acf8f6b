package metrics

import (
	"math/rand"
	"strings"
)

// DefaultSampleRate admits one in ten non-critical metrics.
const DefaultSampleRate = 0.1

// DefaultLatencyThreshold drops latency observations below this value so only
// the slow tail is recorded.
const DefaultLatencyThreshold = 0.1

// criticalMetrics always pass the sampling gate regardless of sample rate.
var criticalMetrics = map[string]struct{}{
	"session_duration":   {},
	"agent_transfer":     {},
	"error_rate":         {},
	"booking_completion": {},
}

// Filter bounds the volume of durable metric writes without losing
// high-value signals. Critical metric names always pass; everything else
// passes with independent probability sampleRate, and latency metrics below
// the threshold are dropped even when selected.
type Filter struct {
	sampleRate       float64
	latencyThreshold float64
	random           func() float64
}

// FilterOption customizes a Filter.
type FilterOption func(*Filter)

// WithRandom injects the randomness source, used by tests for determinism.
func WithRandom(fn func() float64) FilterOption {
	return func(f *Filter) {
		if fn != nil {
			f.random = fn
		}
	}
}

// NewFilter creates a sampling gate. Negative arguments fall back to the
// defaults.
func NewFilter(sampleRate, latencyThreshold float64, opts ...FilterOption) *Filter {
	if sampleRate < 0 {
		sampleRate = DefaultSampleRate
	}
	if latencyThreshold < 0 {
		latencyThreshold = DefaultLatencyThreshold
	}
	f := &Filter{sampleRate: sampleRate, latencyThreshold: latencyThreshold, random: rand.Float64}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ShouldCollect reports whether a metric with this name passes the sampling
// gate. Critical names always pass, for any sample rate including zero.
func (f *Filter) ShouldCollect(name string) bool {
	if _, ok := criticalMetrics[name]; ok {
		return true
	}
	return f.random() < f.sampleRate
}

// Admit applies the full gate: sampling by name, then the latency threshold.
// A latency metric below the threshold is dropped even if sampling selected
// it.
func (f *Filter) Admit(name string, value float64) bool {
	if !f.ShouldCollect(name) {
		return false
	}
	if isLatency(name) && value < f.latencyThreshold {
		return false
	}
	return true
}

func isLatency(name string) bool {
	return strings.Contains(strings.ToLower(name), "latency")
}
