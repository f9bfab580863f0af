package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsRegistry holds the Prometheus metrics exposed on /metrics. Each
// handler owns its registry so several handlers can coexist in one process.
type metricsRegistry struct {
	registry *prometheus.Registry

	Requests           *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	EvaluationDuration prometheus.Histogram
	CacheLookups       *prometheus.CounterVec
	RateLimited        prometheus.Counter
	EvaluationErrors   *prometheus.CounterVec
}

func newMetricsRegistry() *metricsRegistry {
	m := &metricsRegistry{
		registry: prometheus.NewRegistry(),

		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "property_valuation_http_requests_total",
				Help: "Total number of HTTP requests by endpoint and status code",
			},
			[]string{"endpoint", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "property_valuation_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"endpoint"},
		),

		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "property_valuation_evaluation_duration_seconds",
				Help:    "Duration of uncached engine evaluations in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "property_valuation_cache_lookups_total",
				Help: "Total number of result cache lookups by outcome",
			},
			[]string{"result"},
		),

		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "property_valuation_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		EvaluationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "property_valuation_evaluation_errors_total",
				Help: "Total number of rejected evaluations by error type",
			},
			[]string{"error_type"},
		),
	}

	m.registry.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.EvaluationDuration,
		m.CacheLookups,
		m.RateLimited,
		m.EvaluationErrors,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *metricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request count and latency for endpoint.
func (m *metricsRegistry) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)
		m.Requests.WithLabelValues(endpoint, strconv.Itoa(recorder.status)).Inc()
		m.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
