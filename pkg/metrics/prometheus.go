package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scoresIngested *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastAlpha      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scoresIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foralpha_scores_ingested_total",
				Help: "Total number of score updates written to a backend",
			},
			[]string{"backend", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foralpha_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastAlpha: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "foralpha_last_alpha",
				Help: "Most recent forensic alpha computed for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "foralpha_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScoreIngested records a score update written to a backend.
func (r *Recorder) RecordScoreIngested(backend, symbol string) {
	r.scoresIngested.WithLabelValues(backend, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastAlpha records the latest composite alpha for a symbol.
func (r *Recorder) RecordLastAlpha(symbol string, alpha float64) {
	r.lastAlpha.WithLabelValues(symbol).Set(alpha)
}

// RecordLatency records operation duration.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
