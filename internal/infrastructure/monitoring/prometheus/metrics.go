// Package prometheus defines the service metrics. All metrics live on one
// registry so the /metrics endpoint exposes a single coherent surface.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "veriflow"

// Metrics holds every collector the service emits.
type Metrics struct {
	registry *prometheus.Registry

	VerificationsTotal   *prometheus.CounterVec
	VerificationDuration *prometheus.HistogramVec
	RiskCategoryTotal    *prometheus.CounterVec

	ProviderRequestsTotal *prometheus.CounterVec
	ProviderLatency       *prometheus.HistogramVec
	CacheOpsTotal         *prometheus.CounterVec

	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New creates a fresh registry with all service collectors registered,
// including the standard Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Verification runs by type and terminal status.",
		}, []string{"type", "status"}),

		VerificationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verification_duration_seconds",
			Help:      "End-to-end verification processing time.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"type"}),

		RiskCategoryTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_category_total",
			Help:      "Completed risk assessments by category.",
		}, []string{"category"}),

		ProviderRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Upstream provider calls by endpoint and outcome.",
		}, []string{"provider", "endpoint", "outcome"}),

		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "endpoint"}),

		CacheOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Provider cache operations by result.",
		}, []string{"operation", "result"}),

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveVerification records a finished verification run.
func (m *Metrics) ObserveVerification(verType, status string, elapsed time.Duration) {
	m.VerificationsTotal.WithLabelValues(verType, status).Inc()
	m.VerificationDuration.WithLabelValues(verType).Observe(elapsed.Seconds())
}

// ObserveProviderCall records one upstream call.
func (m *Metrics) ObserveProviderCall(provider, endpoint, outcome string, elapsed time.Duration) {
	m.ProviderRequestsTotal.WithLabelValues(provider, endpoint, outcome).Inc()
	m.ProviderLatency.WithLabelValues(provider, endpoint).Observe(elapsed.Seconds())
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
