package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	CacheHits          *prometheus.CounterVec // labels: op
	CacheMisses        *prometheus.CounterVec // labels: op
	CacheStoreErrors   prometheus.Counter
	ComputeDuration    *prometheus.HistogramVec // labels: op
	ProviderFetchTotal *prometheus.CounterVec   // labels: provider, status
	HTTPRequestsTotal  *prometheus.CounterVec   // labels: route, code
	SignalsTotal       *prometheus.CounterVec   // labels: signal
	RefreshDuration    prometheus.Histogram
}

// NewMetrics creates all collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_cache_hits_total",
			Help: "Response cache hits",
		}, []string{"op"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_cache_misses_total",
			Help: "Response cache misses (including stale entries)",
		}, []string{"op"}),
		CacheStoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oracle_cache_store_errors_total",
			Help: "Cache store read/write failures",
		}),
		ComputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oracle_compute_duration_seconds",
			Help:    "Time spent computing a response on a cache miss",
			Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		ProviderFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_provider_fetch_total",
			Help: "Price history fetches by provider and outcome",
		}, []string{"provider", "status"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_signals_total",
			Help: "Computed trading signals",
		}, []string{"signal"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oracle_watchlist_refresh_duration_seconds",
			Help:    "Duration of a full watchlist refresh",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.CacheStoreErrors,
		m.ComputeDuration,
		m.ProviderFetchTotal,
		m.HTTPRequestsTotal,
		m.SignalsTotal,
		m.RefreshDuration,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
