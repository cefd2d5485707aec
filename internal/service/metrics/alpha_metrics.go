package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	AlphaLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foralpha",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of alpha endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AlphaErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foralpha",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by alpha endpoint",
		},
		[]string{"endpoint"},
	)

	AdvisorFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "foralpha",
			Subsystem: "advisor",
			Name:      "fallbacks_total",
			Help:      "Advice responses replaced by the conservative fallback",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(AlphaLatency, AlphaErrors, AdvisorFallbacks)
	})
}
