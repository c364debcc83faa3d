package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the string vault.
type Metrics struct {
	Interned    *prometheus.CounterVec
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New creates and registers the vault metrics against reg. Pass a fresh
// registry in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Interned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronicle_vault_interned_total",
			Help: "Intern calls by result (null, hit, insert).",
		}, []string{"result"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronicle_vault_cache_hits_total",
			Help: "Intern cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronicle_vault_cache_misses_total",
			Help: "Intern cache misses.",
		}),
	}
}

// RecordIntern counts one intern call by result.
func (m *Metrics) RecordIntern(result string) {
	if m == nil {
		return
	}
	m.Interned.WithLabelValues(result).Inc()
}

// RecordCacheHit counts one lookaside hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// RecordCacheMiss counts one lookaside miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}
