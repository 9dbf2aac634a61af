package provider

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements ProviderMetrics on top of Prometheus collectors
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	segments *prometheus.HistogramVec
}

// NewProviderMetrics creates the collectors and registers them with reg
func NewProviderMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicetype",
			Name:      "transcriptions_total",
			Help:      "Transcriptions by provider and result.",
		}, []string{"provider", "result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicetype",
			Name:      "transcription_failures_total",
			Help:      "Failed transcriptions by provider and error code.",
		}, []string{"provider", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voicetype",
			Name:      "transcription_duration_seconds",
			Help:      "Wall time of successful engine calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"provider"}),
		segments: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voicetype",
			Name:      "transcription_segments",
			Help:      "Segments produced per transcription.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"provider"}),
	}

	reg.MustRegister(m.requests, m.failures, m.latency, m.segments)
	return m
}

// RecordSuccess records a successful transcription
func (m *PrometheusMetrics) RecordSuccess(provider string, latency time.Duration, segments int) {
	m.requests.WithLabelValues(provider, "success").Inc()
	m.latency.WithLabelValues(provider).Observe(latency.Seconds())
	m.segments.WithLabelValues(provider).Observe(float64(segments))
}

// RecordFailure records a failed transcription
func (m *PrometheusMetrics) RecordFailure(provider string, errorType string) {
	m.requests.WithLabelValues(provider, "failure").Inc()
	m.failures.WithLabelValues(provider, errorType).Inc()
}
