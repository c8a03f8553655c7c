package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Decision outcomes by status and reason
	DecisionOutcome *prometheus.CounterVec

	// Full orchestration latency, adapter through evaluation
	DecideLatency prometheus.Histogram

	// Request failures by the stage they died in
	StageFailures *prometheus.CounterVec

	// Audit emissions that failed (swallowed, never propagated)
	AuditFailures prometheus.Counter

	// Rule cache invalidations triggered by rule edits
	CacheInvalidations prometheus.Counter
}

// New creates a new Metrics instance with all decision module metrics registered.
func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bre_decision_outcomes_total",
			Help: "Total decision outcomes by status and rejection reason",
		}, []string{"status", "reason"}),

		DecideLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bre_decision_decide_duration_seconds",
			Help:    "Duration of full decision orchestration including fact adaptation",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		StageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bre_decision_stage_failures_total",
			Help: "Decision requests that failed, by orchestration stage",
		}, []string{"stage"}),

		AuditFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bre_decision_audit_failures_total",
			Help: "Audit emissions that failed and were swallowed",
		}),

		CacheInvalidations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bre_rules_cache_invalidations_total",
			Help: "Whole-cache rule invalidations triggered by rule edits",
		}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(status, reason string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(status, reason).Inc()
	}
}

// ObserveDecideLatency records the total orchestration duration.
func (m *Metrics) ObserveDecideLatency(d time.Duration) {
	if m != nil {
		m.DecideLatency.Observe(d.Seconds())
	}
}

// IncrementStageFailure records a request failing in the given stage.
func (m *Metrics) IncrementStageFailure(stage string) {
	if m != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

// IncrementAuditFailure records a swallowed audit emission failure.
func (m *Metrics) IncrementAuditFailure() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}

// IncrementCacheInvalidation records a rule cache invalidation.
func (m *Metrics) IncrementCacheInvalidation() {
	if m != nil {
		m.CacheInvalidations.Inc()
	}
}
