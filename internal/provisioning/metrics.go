package provisioning

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-phase counters and durations. Nil receivers are
// tolerated so the pipeline runs unchanged when metrics are disabled.
type Metrics struct {
	phaseDuration *prometheus.HistogramVec
	phaseFailures *prometheus.CounterVec
	resourceOps   *prometheus.CounterVec
}

// NewMetrics creates the metric set and registers it with the registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "webvpc",
			Name:      "phase_duration_seconds",
			Help:      "Wall time of each provisioning phase.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"phase"}),
		phaseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webvpc",
			Name:      "phase_failures_total",
			Help:      "Provisioning phase failures.",
		}, []string{"phase"}),
		resourceOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webvpc",
			Name:      "resource_operations_total",
			Help:      "Resource operations by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(m.phaseDuration, m.phaseFailures, m.resourceOps)
	return m
}

// ObservePhase records the duration of a completed phase.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// CountPhaseFailure records a failed phase.
func (m *Metrics) CountPhaseFailure(phase string) {
	if m == nil {
		return
	}
	m.phaseFailures.WithLabelValues(phase).Inc()
}

// CountResourceOp records one resource operation outcome, for example
// ("instance", "created") or ("nat-gateway", "deleted").
func (m *Metrics) CountResourceOp(kind, outcome string) {
	if m == nil {
		return
	}
	m.resourceOps.WithLabelValues(kind, outcome).Inc()
}
