package progressapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the API request collectors
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates and registers the API collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_api_requests_total",
				Help: "Total number of progress API requests",
			},
			[]string{"procedure", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "progress_api_request_duration_seconds",
				Help:    "Progress API request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

func (m *Metrics) RecordRequest(procedure, code string, elapsed time.Duration) {
	m.requests.WithLabelValues(procedure, code).Inc()
	m.latency.WithLabelValues(procedure).Observe(elapsed.Seconds())
}
