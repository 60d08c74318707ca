// Package metrics exports quote pipeline metrics via Prometheus.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/daily-quote/internal/ports"
)

const namespace = "daily_quote"

// QuoteMetrics owns the pipeline collectors. It implements ports.QuoteMetrics
// and is safe for concurrent use.
type QuoteMetrics struct {
	cacheLookups    *prometheus.CounterVec
	upstreamFetches *prometheus.CounterVec
	upstreamMisses  *prometheus.CounterVec
	storeInserts    *prometheus.CounterVec
}

// New registers the collectors against reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) (*QuoteMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &QuoteMetrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Quote store lookups partitioned by hit or miss.",
		}, []string{"result"}),
		upstreamFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Upstream page fetches partitioned by whether a quote was found.",
		}, []string{"found"}),
		upstreamMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_misses_total",
			Help:      "Upstream pages that yielded no quote, partitioned by reason.",
		}, []string{"reason"}),
		storeInserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_inserts_total",
			Help:      "Quote inserts partitioned by result.",
		}, []string{"result"}),
	}

	for _, collector := range []prometheus.Collector{
		m.cacheLookups,
		m.upstreamFetches,
		m.upstreamMisses,
		m.storeInserts,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register quote collector: %w", err)
		}
	}

	return m, nil
}

// CacheLookups implements ports.QuoteMetrics.
func (m *QuoteMetrics) CacheLookups(result string, n int) {
	if n > 0 {
		m.cacheLookups.WithLabelValues(result).Add(float64(n))
	}
}

// UpstreamFetch implements ports.QuoteMetrics.
func (m *QuoteMetrics) UpstreamFetch(found bool) {
	m.upstreamFetches.WithLabelValues(fmt.Sprint(found)).Inc()
}

// StoreInsert implements ports.QuoteMetrics.
func (m *QuoteMetrics) StoreInsert(result string) {
	m.storeInserts.WithLabelValues(result).Inc()
}

// UpstreamMiss counts a page without a quote.
func (m *QuoteMetrics) UpstreamMiss(reason string) {
	m.upstreamMisses.WithLabelValues(reason).Inc()
}

var _ ports.QuoteMetrics = (*QuoteMetrics)(nil)
