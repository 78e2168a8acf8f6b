package metrics

import (
	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/store"
)

// Collector routes metric observations for one session through the sampling
// gate and into the write-behind store. Collect never blocks and never
// fails; dropped observations are simply not persisted.
type Collector struct {
	store     *store.WriteBehind
	sessionID string
	filter    *Filter
}

// NewCollector binds a filter and store to a session.
func NewCollector(wb *store.WriteBehind, sessionID string, filter *Filter) *Collector {
	if filter == nil {
		filter = NewFilter(DefaultSampleRate, DefaultLatencyThreshold)
	}
	return &Collector{store: wb, sessionID: sessionID, filter: filter}
}

// Collect offers one observation to the gate and enqueues it when admitted.
func (c *Collector) Collect(metricType, name string, value float64, unit string, metadata map[string]any) {
	if !c.filter.Admit(name, value) {
		return
	}
	if c.store == nil {
		return
	}
	c.store.EnqueueMetric(core.Metric{
		SessionID: c.sessionID,
		Type:      metricType,
		Name:      name,
		Value:     value,
		Unit:      unit,
		Metadata:  metadata,
	})
}
