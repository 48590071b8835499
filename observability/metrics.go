package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Submission metrics
	SubmissionsTotal   *prometheus.CounterVec
	SubmissionDuration *prometheus.HistogramVec
	Recommendations    *prometheus.CounterVec

	// Stage display metrics
	StageTransitionsTotal *prometheus.CounterVec

	// Backend metrics
	BackendRequestsTotal *prometheus.CounterVec
	BackendErrorsTotal   *prometheus.CounterVec
	BackendDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec
	RateLimitedTotal    *prometheus.CounterVec

	// Live console metrics
	ConsoleConnections prometheus.Gauge

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}

// globalMetrics is the global metrics instance
var (
	globalMetrics *Metrics
	metricsMu     sync.Mutex
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Submission metrics
		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent_console",
				Subsystem: "submission",
				Name:      "total",
				Help:      "Total number of analysis submissions by outcome",
			},
			[]string{"outcome"},
		),
		SubmissionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agent_console",
				Subsystem: "submission",
				Name:      "duration_seconds",
				Help:      "Time from submission to final render in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"outcome"},
		),
		Recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent_console",
				Subsystem: "submission",
				Name:      "recommendations_total",
				Help:      "Rendered recommendations by value and confidence",
			},
			[]string{"recommendation", "confidence"},
		),

		// Stage display metrics
		StageTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent_console",
				Subsystem: "stage",
				Name:      "transitions_total",
				Help:      "Stage display changes by stage, status and source",
			},
			[]string{"stage", "status", "source"},
		),

		// Backend metrics
		BackendRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent_console",
				Subsystem: "backend",
				Name:      "requests_total",
				Help:      "Total number of analysis backend requests",
			},
			[]string{"operation"},
		),
		BackendErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent_console",
				Subsystem: "backend",
				Name:      "errors_total",
				Help:      "Total number of analysis backend errors",
			},
			[]string{"operation", "error_type"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agent_console",
				Subsystem: "backend",
				Name:      "duration_seconds",
				Help:      "Duration of analysis backend calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent_console",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agent_console",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agent_console",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		RateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent_console",
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the submission rate limiter",
			},
			[]string{"path"},
		),

		// Live console metrics
		ConsoleConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "agent_console",
				Subsystem: "console",
				Name:      "connections",
				Help:      "Open live console websocket connections",
			},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "agent_console",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent_console",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = NewMetrics(nil)
	}
	return globalMetrics
}

// SetMetrics replaces the global metrics instance (useful for testing)
func SetMetrics(m *Metrics) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = m
}

// RecordSubmission records a finished submission
func (m *Metrics) RecordSubmission(outcome string, duration time.Duration) {
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
	m.SubmissionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRecommendation records a rendered recommendation
func (m *Metrics) RecordRecommendation(recommendation, confidence string) {
	m.Recommendations.WithLabelValues(recommendation, confidence).Inc()
}

// RecordStageTransition records a stage display change
func (m *Metrics) RecordStageTransition(stage, status, source string) {
	m.StageTransitionsTotal.WithLabelValues(stage, status, source).Inc()
}

// RecordBackendRequest records an analysis backend request
func (m *Metrics) RecordBackendRequest(operation string) {
	m.BackendRequestsTotal.WithLabelValues(operation).Inc()
}

// RecordBackendError records an analysis backend error
func (m *Metrics) RecordBackendError(operation, errorType string) {
	m.BackendErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordBackendDuration records the duration of a backend call
func (m *Metrics) RecordBackendDuration(operation string, duration time.Duration) {
	m.BackendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordRateLimited records a rejected submission
func (m *Metrics) RecordRateLimited(path string) {
	m.RateLimitedTotal.WithLabelValues(path).Inc()
}

// ConsoleOpened increments the open console gauge
func (m *Metrics) ConsoleOpened() {
	m.ConsoleConnections.Inc()
}

// ConsoleClosed decrements the open console gauge
func (m *Metrics) ConsoleClosed() {
	m.ConsoleConnections.Dec()
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveSubmission records the submission outcome and duration
func (t *Timer) ObserveSubmission(outcome string) {
	t.metrics.RecordSubmission(outcome, time.Since(t.start))
}

// ObserveBackend records the backend call duration
func (t *Timer) ObserveBackend(operation string) {
	t.metrics.RecordBackendDuration(operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
