// Package metrics records reconciliation and persistence metrics with
// Prometheus collectors on a private registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reconcile outcomes.
const (
	OutcomeConverged    = "converged"
	OutcomeNotConverged = "not_converged"
	OutcomePanic        = "panic"
	OutcomeStale        = "stale"
)

// Recorder holds the collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	Reconciles        *prometheus.CounterVec
	ReconcileDuration prometheus.Histogram
	Coalesced         prometheus.Counter
	Persistence       *prometheus.CounterVec
	Subscribers       prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Reconciles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pnl_reconciles_total",
				Help: "Total number of reconciliations by outcome",
			},
			[]string{"outcome"},
		),
		ReconcileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pnl_reconcile_duration_seconds",
				Help:    "Duration of a reconciliation in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		Coalesced: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pnl_reconcile_coalesced_total",
				Help: "Total number of recalculation triggers folded into a running reconciliation",
			},
		),
		Persistence: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pnl_persistence_operations_total",
				Help: "Total number of persistence operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		Subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pnl_heavy_subscribers",
				Help: "Number of active heavy-calculation subscribers",
			},
		),
	}
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveReconcile counts one reconciliation and its duration.
func (r *Recorder) ObserveReconcile(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.Reconciles.WithLabelValues(outcome).Inc()
	if outcome == OutcomeConverged || outcome == OutcomeNotConverged {
		r.ReconcileDuration.Observe(d.Seconds())
	}
}

// ObserveCoalesced counts a trigger that arrived during a reconciliation.
func (r *Recorder) ObserveCoalesced() {
	if r == nil {
		return
	}
	r.Coalesced.Inc()
}

// ObservePersistence counts a load or save and whether it failed.
func (r *Recorder) ObservePersistence(operation string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.Persistence.WithLabelValues(operation, result).Inc()
}

// SetSubscribers reports the number of heavy-stream subscribers.
func (r *Recorder) SetSubscribers(n int) {
	if r == nil {
		return
	}
	r.Subscribers.Set(float64(n))
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
