package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its own registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	reportsTotal        *prometheus.CounterVec
	reportDuration      *prometheus.HistogramVec
	authAttemptsTotal   *prometheus.CounterVec
	cacheLookupsTotal   *prometheus.CounterVec
}

// New registers every collector under the vignetage namespace.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vignetage",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vignetage",
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		reportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vignetage",
				Name:      "reports_generated_total",
				Help:      "Reports generated, by type, format and outcome",
			},
			[]string{"type", "format", "outcome"},
		),
		reportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vignetage",
				Name:      "report_build_duration_seconds",
				Help:      "Time spent building and encoding a report",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"type"},
		),
		authAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vignetage",
				Name:      "auth_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"status"},
		),
		cacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vignetage",
				Name:      "cache_lookups_total",
				Help:      "Query cache lookups by collection and result",
			},
			[]string{"collection", "result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.reportsTotal,
		m.reportDuration,
		m.authAttemptsTotal,
		m.cacheLookupsTotal,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// ReportGenerated records one report; outcome is "ok", "degraded" or "error".
func (m *Metrics) ReportGenerated(reportType, format, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(reportType, format, outcome).Inc()
	m.reportDuration.WithLabelValues(reportType).Observe(duration.Seconds())
}

// AuthAttempt records a login outcome ("success" or "failure").
func (m *Metrics) AuthAttempt(status string) {
	if m == nil {
		return
	}
	m.authAttemptsTotal.WithLabelValues(status).Inc()
}

// CacheLookup records a hit or miss on a cached collection.
func (m *Metrics) CacheLookup(collection string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(collection, result).Inc()
}
