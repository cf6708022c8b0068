package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tkmproject/tkm-api/internal/models"
)

// Submission outcomes recorded per form.
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeSpam        = "spam"
	OutcomeRelayFailed = "relay_failed"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	submissions         *prometheus.CounterVec
	mirrorFailures      *prometheus.CounterVec
	relayLatency        *prometheus.HistogramVec
	activeSubscriptions prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "form_submissions_total",
		Help: "Form submissions by form and outcome",
	}, []string{"form", "outcome"})

	mirrorFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirror_write_failures_total",
		Help: "Failed best-effort writes to the dashboard mirror",
	}, []string{"collection"})

	relayLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_request_duration_seconds",
		Help:    "Latency of relay submissions",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
	}, []string{"form", "result"})

	activeSubscriptions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_active_subscriptions",
		Help: "Live collection aggregators currently subscribed",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, submissions, mirrorFailures, relayLatency, activeSubscriptions, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:            registry,
		handler:             handler,
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		submissions:         submissions,
		mirrorFailures:      mirrorFailures,
		relayLatency:        relayLatency,
		activeSubscriptions: activeSubscriptions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSubmission counts a submission attempt for kind.
func (m *MetricsService) RecordSubmission(kind models.FormKind, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(string(kind), outcome).Inc()
}

// RecordMirrorFailure counts a swallowed mirror write error.
func (m *MetricsService) RecordMirrorFailure(collection string) {
	if m == nil {
		return
	}
	m.mirrorFailures.WithLabelValues(collection).Inc()
}

// ObserveRelay records relay latency.
func (m *MetricsService) ObserveRelay(kind models.FormKind, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.relayLatency.WithLabelValues(string(kind), result).Observe(duration.Seconds())
}

// SubscriptionOpened tracks a newly subscribed aggregator.
func (m *MetricsService) SubscriptionOpened() {
	if m == nil {
		return
	}
	m.activeSubscriptions.Inc()
}

// SubscriptionClosed tracks a released aggregator.
func (m *MetricsService) SubscriptionClosed() {
	if m == nil {
		return
	}
	m.activeSubscriptions.Dec()
}
