package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Session metrics
	SessionsActive    prometheus.Gauge
	SessionsCreated   *prometheus.CounterVec
	SessionsDeleted   prometheus.Counter
	SessionOpDuration *prometheus.HistogramVec

	// Provider metrics
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec

	// Agent metrics
	AgentSteps prometheus.Counter
	AgentTurns prometheus.Histogram

	registry  *prometheus.Registry
	startTime time.Time
}

// NewMetrics creates a new metrics collector with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry:  registry,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_sessions_active",
				Help: "Number of live automation sessions",
			},
		),
		SessionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_sessions_created_total",
				Help: "Total number of sessions created",
			},
			[]string{"computer_type"},
		),
		SessionsDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_sessions_deleted_total",
				Help: "Total number of sessions deleted",
			},
		),
		SessionOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_session_operation_duration_seconds",
				Help:    "Session operation duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation", "status"},
		),

		ProviderCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_provider_calls_total",
				Help: "Total number of automation provider calls",
			},
			[]string{"operation", "status"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_provider_call_duration_seconds",
				Help:    "Automation provider call duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),

		AgentSteps: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_agent_steps_total",
				Help: "Total number of reasoning model steps",
			},
		),
		AgentTurns: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gateway_agent_turns_per_interact",
				Help:    "Agent loop turns consumed per interact call",
				Buckets: []float64{1, 2, 3, 5, 8, 10, 15, 20},
			},
		),
	}

	return m
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records metrics for one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordProviderCall records one automation provider call.
func (m *Metrics) RecordProviderCall(operation, status string, duration time.Duration) {
	m.ProviderCalls.WithLabelValues(operation, status).Inc()
	m.ProviderDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSessionOperation records one session-level operation.
func (m *Metrics) RecordSessionOperation(operation, status string, duration time.Duration) {
	m.SessionOpDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordSessionCreated updates session counters on create.
func (m *Metrics) RecordSessionCreated(computerType string) {
	m.SessionsCreated.WithLabelValues(computerType).Inc()
	m.SessionsActive.Inc()
}

// RecordSessionDeleted updates session counters on delete.
func (m *Metrics) RecordSessionDeleted() {
	m.SessionsDeleted.Inc()
	m.SessionsActive.Dec()
}

// Uptime returns time since metrics initialization.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
