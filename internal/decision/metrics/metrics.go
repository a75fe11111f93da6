package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision engine. Tracks lifecycle
// transition counts, guard rejections, and critical path durations.
type Metrics struct {
	DecisionsCreated   prometheus.Counter
	Commits            prometheus.Counter
	ValidationFailures prometheus.Counter
	CycleRejections    prometheus.Counter
	Reviews            prometheus.Counter
	CommitDuration     prometheus.Histogram
	GraphFetchDuration prometheus.Histogram
}

// New creates a Metrics instance with all decision engine metrics registered
// on the default registry.
func New() *Metrics {
	return &Metrics{
		DecisionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_decisions_created_total",
			Help: "Total number of decisions created",
		}),
		Commits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_decision_commits_total",
			Help: "Total number of successful decision commits",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_commit_validation_failures_total",
			Help: "Total number of commits rejected by validation",
		}),
		CycleRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_graph_cycle_rejections_total",
			Help: "Total number of parent-set updates rejected for creating a cycle",
		}),
		Reviews: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_reviews_submitted_total",
			Help: "Total number of outcome reviews submitted",
		}),
		CommitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "verdict_commit_duration_seconds",
			Help:    "Duration of commit operations (validation plus atomic write)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		GraphFetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "verdict_graph_fetch_duration_seconds",
			Help:    "Duration of project graph snapshot reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveCommit records the duration of a commit operation. Call with
// time.Now() captured at the start.
func (m *Metrics) ObserveCommit(start time.Time) {
	if m == nil {
		return
	}
	m.CommitDuration.Observe(time.Since(start).Seconds())
}

// ObserveGraphFetch records the duration of a graph snapshot read.
func (m *Metrics) ObserveGraphFetch(start time.Time) {
	if m == nil {
		return
	}
	m.GraphFetchDuration.Observe(time.Since(start).Seconds())
}

// The Inc helpers tolerate a nil receiver so services can run without
// metrics in tests.

func (m *Metrics) IncDecisionsCreated() {
	if m != nil {
		m.DecisionsCreated.Inc()
	}
}

func (m *Metrics) IncCommits() {
	if m != nil {
		m.Commits.Inc()
	}
}

func (m *Metrics) IncValidationFailures() {
	if m != nil {
		m.ValidationFailures.Inc()
	}
}

func (m *Metrics) IncCycleRejections() {
	if m != nil {
		m.CycleRejections.Inc()
	}
}

func (m *Metrics) IncReviews() {
	if m != nil {
		m.Reviews.Inc()
	}
}
