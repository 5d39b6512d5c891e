// Package metrics provides Prometheus observability for the preview
// server, grounded on the pack's decision/metrics.go promauto pattern.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every previewcore metric.
type Metrics struct {
	PreviewLatency  prometheus.Histogram
	PreviewOutcomes *prometheus.CounterVec
	RegulationRules prometheus.Gauge
	ReloadErrors    prometheus.Counter
}

// New registers and returns the previewcore metric set.
func New() *Metrics {
	return &Metrics{
		PreviewLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "previewcore_preview_duration_seconds",
			Help:    "Duration of a full preview request including the classifier and narration calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}),
		PreviewOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "previewcore_preview_outcomes_total",
			Help: "Total preview outcomes by state",
		}, []string{"state"}),
		RegulationRules: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "previewcore_regulation_rules",
			Help: "Number of regulation rules currently loaded",
		}),
		ReloadErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "previewcore_regulation_reload_errors_total",
			Help: "Total regulation directory reload failures",
		}),
	}
}

// ObservePreview records one preview request's latency and outcome.
func (m *Metrics) ObservePreview(d time.Duration, state string) {
	if m == nil {
		return
	}
	m.PreviewLatency.Observe(d.Seconds())
	m.PreviewOutcomes.WithLabelValues(state).Inc()
}
