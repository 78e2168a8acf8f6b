package metrics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicelane/frontdesk/metrics"
	"github.com/voicelane/frontdesk/store"
	"github.com/voicelane/frontdesk/store/memory"
)

func never() float64  { return 1.0 }
func always() float64 { return 0.0 }

func TestCriticalMetricsAlwaysPass(t *testing.T) {
	f := metrics.NewFilter(0.0, metrics.DefaultLatencyThreshold, metrics.WithRandom(never))

	for _, name := range []string{"session_duration", "agent_transfer", "error_rate", "booking_completion"} {
		assert.True(t, f.ShouldCollect(name), name)
	}
	assert.False(t, f.ShouldCollect("tokens_per_second"))
}

func TestLatencyBelowThresholdIsDropped(t *testing.T) {
	f := metrics.NewFilter(1.0, 0.1, metrics.WithRandom(always))

	assert.False(t, f.Admit("tts_latency_ms", 0.05))
	assert.True(t, f.Admit("tts_latency_ms", 0.5))
	assert.True(t, f.Admit("tokens_per_second", 0.05)) // not a latency metric
}

func TestSamplingGate(t *testing.T) {
	admitting := metrics.NewFilter(0.1, 0.1, metrics.WithRandom(func() float64 { return 0.05 }))
	rejecting := metrics.NewFilter(0.1, 0.1, metrics.WithRandom(func() float64 { return 0.5 }))

	assert.True(t, admitting.ShouldCollect("tokens_per_second"))
	assert.False(t, rejecting.ShouldCollect("tokens_per_second"))
}

func TestCollectorPersistsOnlyAdmitted(t *testing.T) {
	backend := memory.New()
	wb := store.New(backend)
	require.NoError(t, wb.Init(context.Background()))
	sid, err := wb.CreateSession(context.Background(), "room", "caller")
	require.NoError(t, err)

	f := metrics.NewFilter(1.0, 0.1, metrics.WithRandom(always))
	c := metrics.NewCollector(wb, sid, f)

	c.Collect("llm", "llm_latency", 0.5, "s", nil)  // above threshold, kept
	c.Collect("tts", "tts_latency", 0.05, "s", nil) // below threshold, dropped
	wb.Flush(context.Background())

	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, data.Metrics, 1)
	assert.Equal(t, "llm_latency", data.Metrics[0].Name)
}

func TestRingUpdateAndSummary(t *testing.T) {
	r := metrics.NewRing()
	r.Update("response_time", 0.42)
	r.Increment("agent_transfers")
	r.Increment("agent_transfers")

	s, ok := r.Get("agent_transfers")
	require.True(t, ok)
	assert.Equal(t, 2.0, s.Value)

	all, last := r.Summary()
	assert.Len(t, all, 2)
	assert.False(t, last.IsZero())
}
