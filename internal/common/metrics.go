package common

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records pipeline run statistics on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	runsTotal     *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	holdings      prometheus.Gauge
	avgConfidence prometheus.Gauge
	sellCount     prometheus.Gauge
}

// NewMetrics creates a Metrics recorder with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vigil_runs_total",
				Help: "Total number of analysis runs by outcome",
			},
			[]string{"status"},
		),
		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vigil_step_duration_seconds",
				Help:    "Duration of pipeline steps in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"step"},
		),
		holdings: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vigil_holdings_analysed",
			Help: "Holdings analysed in the last run",
		}),
		avgConfidence: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vigil_average_confidence",
			Help: "Average portfolio confidence from the last synthesis",
		}),
		sellCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vigil_sell_candidates",
			Help: "Sell candidates from the last synthesis",
		}),
	}
}

// RecordRun counts a finished run
func (m *Metrics) RecordRun(status string) {
	m.runsTotal.WithLabelValues(status).Inc()
}

// RecordStep observes a step duration in seconds
func (m *Metrics) RecordStep(step string, seconds float64) {
	m.stepDuration.WithLabelValues(step).Observe(seconds)
}

// RecordSynthesis updates the gauges from the latest synthesis summary
func (m *Metrics) RecordSynthesis(holdings, sellCandidates int, averageConfidence float64) {
	m.holdings.Set(float64(holdings))
	m.sellCount.Set(float64(sellCandidates))
	m.avgConfidence.Set(averageConfidence)
}

// Gatherer exposes the underlying registry (used by tests)
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
