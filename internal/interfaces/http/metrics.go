package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// symbolClasses are the label values the cache reports hits and misses
// under.
var symbolClasses = []string{"futures", "crypto", "session"}

// MetricsRegistry holds the Prometheus metrics for the refresh
// pipeline. It satisfies the cache, fetch, and provider metrics
// interfaces so one registry observes the whole path.
type MetricsRegistry struct {
	registry *prometheus.Registry

	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	CacheHitRatio prometheus.Gauge
	CacheEntries  prometheus.Gauge

	FetchDuration  *prometheus.HistogramVec
	FetchInflight  prometheus.Gauge
	ProviderErrors *prometheus.CounterVec
}

// NewMetricsRegistry creates and registers the pipeline metrics on a
// private registry.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketd_cache_hits_total",
				Help: "Total cache hits by symbol class",
			},
			[]string{"class"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketd_cache_misses_total",
				Help: "Total cache misses by symbol class",
			},
			[]string{"class"},
		),
		CacheHitRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketd_cache_hit_ratio",
				Help: "Overall cache hit ratio (0.0 to 1.0)",
			},
		),
		CacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketd_cache_entries",
				Help: "Number of entries currently in the cache",
			},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketd_fetch_duration_seconds",
				Help:    "Duration of provider fetches by outcome",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"outcome"},
		),
		FetchInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketd_fetch_inflight",
				Help: "Provider fetches currently in flight",
			},
		),
		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketd_provider_errors_total",
				Help: "Total provider failures by operation",
			},
			[]string{"op"},
		),
	}

	m.registry.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.CacheHitRatio,
		m.CacheEntries,
		m.FetchDuration,
		m.FetchInflight,
		m.ProviderErrors,
	)

	return m
}

// RecordCacheHit counts a hit for class and refreshes the ratio gauge.
func (m *MetricsRegistry) RecordCacheHit(class string) {
	m.CacheHits.WithLabelValues(class).Inc()
	m.updateCacheHitRatio()
}

// RecordCacheMiss counts a miss for class and refreshes the ratio
// gauge.
func (m *MetricsRegistry) RecordCacheMiss(class string) {
	m.CacheMisses.WithLabelValues(class).Inc()
	m.updateCacheHitRatio()
}

// SetCacheEntries tracks the live entry count.
func (m *MetricsRegistry) SetCacheEntries(n int) {
	m.CacheEntries.Set(float64(n))
}

// FetchStarted marks one provider fetch in flight.
func (m *MetricsRegistry) FetchStarted() {
	m.FetchInflight.Inc()
}

// FetchFinished records a completed fetch with its outcome.
func (m *MetricsRegistry) FetchFinished(outcome string, elapsed time.Duration) {
	m.FetchInflight.Dec()
	m.FetchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordProviderError counts an upstream failure for op.
func (m *MetricsRegistry) RecordProviderError(op string) {
	m.ProviderErrors.WithLabelValues(op).Inc()
}

// updateCacheHitRatio recomputes the ratio gauge by reading the
// counter pairs back through their metric families.
func (m *MetricsRegistry) updateCacheHitRatio() {
	var metric io_prometheus_client.Metric
	totalHits := 0.0
	totalMisses := 0.0

	for _, class := range symbolClasses {
		if counter, err := m.CacheHits.GetMetricWithLabelValues(class); err == nil {
			if err := counter.Write(&metric); err == nil {
				totalHits += metric.GetCounter().GetValue()
			}
		}
		if counter, err := m.CacheMisses.GetMetricWithLabelValues(class); err == nil {
			if err := counter.Write(&metric); err == nil {
				totalMisses += metric.GetCounter().GetValue()
			}
		}
	}

	total := totalHits + totalMisses
	if total > 0 {
		m.CacheHitRatio.Set(totalHits / total)
	}
}

// Handler returns the scrape endpoint for this registry.
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
