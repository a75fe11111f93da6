package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-level Prometheus metrics: the notification outbox
// dispatch pipeline. Decision engine metrics live in
// internal/decision/metrics.
type Metrics struct {
	EventsDispatched prometheus.Counter
	DispatchFailures prometheus.Counter
	OutboxPending    prometheus.Gauge
}

// New creates and registers all process-level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EventsDispatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_outbox_events_dispatched_total",
			Help: "Total number of outbox events delivered to the notification topic",
		}),
		DispatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_outbox_dispatch_failures_total",
			Help: "Total number of failed outbox dispatch attempts",
		}),
		OutboxPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "verdict_outbox_pending_events",
			Help: "Events currently awaiting dispatch",
		}),
	}
}

// IncDispatched increments the dispatched counter by n.
func (m *Metrics) IncDispatched(n int) {
	if m != nil {
		m.EventsDispatched.Add(float64(n))
	}
}

// IncDispatchFailures increments the failure counter by 1.
func (m *Metrics) IncDispatchFailures() {
	if m != nil {
		m.DispatchFailures.Inc()
	}
}

// SetPending records the pending backlog size.
func (m *Metrics) SetPending(n int) {
	if m != nil {
		m.OutboxPending.Set(float64(n))
	}
}
