package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pulse"

// Metrics holds the Prometheus collectors of the service.
// All recording methods are safe to call on a nil *Metrics, which disables them.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Write path
	MetricsIngestedTotal *prometheus.CounterVec
	MetricsRejectedTotal *prometheus.CounterVec

	// Read path
	AggregateQueriesTotal  *prometheus.CounterVec
	AggregateQueryDuration *prometheus.HistogramVec

	// Geocoding
	GeocodeRequestsTotal *prometheus.CounterVec
	GeocodeDuration      prometheus.Histogram
	GeocodeCacheTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		MetricsIngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "metrics_ingested_total",
				Help:      "Metric events accepted and stored, by type",
			},
			[]string{"type"},
		),
		MetricsRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "metrics_rejected_total",
				Help:      "Metric events rejected, by error code",
			},
			[]string{"code"},
		),

		AggregateQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aggregate_queries_total",
				Help:      "Aggregate reads, by metric type and outcome",
			},
			[]string{"type", "status"},
		),
		AggregateQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregate_query_duration_seconds",
				Help:      "Aggregate read duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"type"},
		),

		GeocodeRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "geocode_requests_total",
				Help:      "Reverse geocoding calls to the upstream service, by outcome",
			},
			[]string{"status"},
		),
		GeocodeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "geocode_duration_seconds",
				Help:      "Upstream reverse geocoding latency in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		GeocodeCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "geocode_cache_total",
				Help:      "Geocode cache lookups, by backend and result",
			},
			[]string{"backend", "result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.MetricsIngestedTotal,
		m.MetricsRejectedTotal,
		m.AggregateQueriesTotal,
		m.AggregateQueryDuration,
		m.GeocodeRequestsTotal,
		m.GeocodeDuration,
		m.GeocodeCacheTotal,
	)

	return m
}

// RegisterDBStats exports database/sql pool statistics.
func (m *Metrics) RegisterDBStats(db *sql.DB) {
	if m == nil || db == nil {
		return
	}
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, namespace))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RecordIngested(metricType string) {
	if m == nil {
		return
	}
	m.MetricsIngestedTotal.WithLabelValues(metricType).Inc()
}

func (m *Metrics) RecordRejected(code string) {
	if m == nil {
		return
	}
	m.MetricsRejectedTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) ObserveAggregateQuery(metricType string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.AggregateQueriesTotal.WithLabelValues(metricType, outcome(err)).Inc()
	m.AggregateQueryDuration.WithLabelValues(metricType).Observe(d.Seconds())
}

func (m *Metrics) ObserveGeocode(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.GeocodeRequestsTotal.WithLabelValues(outcome(err)).Inc()
	m.GeocodeDuration.Observe(d.Seconds())
}

// RecordGeocodeCache counts a cache lookup. result is hit, miss or error.
func (m *Metrics) RecordGeocodeCache(backend, result string) {
	if m == nil {
		return
	}
	m.GeocodeCacheTotal.WithLabelValues(backend, result).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
