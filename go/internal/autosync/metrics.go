package autosync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector defines the interface for collecting sync metrics
type MetricsCollector interface {
	RecordCycle(trigger Trigger, outcome Outcome, duration time.Duration)
	RecordCoalesced(trigger Trigger)
	RecordMutation(kind string)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordCycle(trigger Trigger, outcome Outcome, duration time.Duration) {}
func (n *NoOpMetricsCollector) RecordCoalesced(trigger Trigger)                                      {}
func (n *NoOpMetricsCollector) RecordMutation(kind string)                                           {}

// PrometheusMetrics implements MetricsCollector using Prometheus
type PrometheusMetrics struct {
	cycles        *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	coalesced     *prometheus.CounterVec
	mutations     *prometheus.CounterVec
}

// NewPrometheusMetrics creates the sync collectors and registers them with reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_sync_cycles_total",
				Help: "Completed sync cycles by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		cycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "progress_sync_cycle_duration_seconds",
				Help:    "Duration of sync cycles",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		coalesced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_sync_coalesced_total",
				Help: "Sync requests folded into an already scheduled cycle",
			},
			[]string{"trigger"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_mutations_total",
				Help: "Local progress mutations by kind",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.cycles, m.cycleDuration, m.coalesced, m.mutations)
	return m
}

func (m *PrometheusMetrics) RecordCycle(trigger Trigger, outcome Outcome, duration time.Duration) {
	m.cycles.WithLabelValues(string(trigger), string(outcome)).Inc()
	m.cycleDuration.WithLabelValues(string(outcome)).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordCoalesced(trigger Trigger) {
	m.coalesced.WithLabelValues(string(trigger)).Inc()
}

func (m *PrometheusMetrics) RecordMutation(kind string) {
	m.mutations.WithLabelValues(kind).Inc()
}
