package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for versioned entity appends.
type Metrics struct {
	Appends        *prometheus.CounterVec
	AppendDuration *prometheus.HistogramVec
}

// New creates and registers the append metrics against reg. Pass a fresh
// registry in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Appends: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronicle_appends_total",
			Help: "Append calls by entity and outcome (created, updated, unchanged).",
		}, []string{"entity", "outcome"}),
		AppendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chronicle_append_duration_seconds",
			Help:    "Append latency by entity.",
			Buckets: prometheus.DefBuckets,
		}, []string{"entity"}),
	}
}

// RecordAppend counts one append by entity and outcome.
func (m *Metrics) RecordAppend(entity, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Appends.WithLabelValues(entity, outcome).Inc()
	m.AppendDuration.WithLabelValues(entity).Observe(elapsed.Seconds())
}
