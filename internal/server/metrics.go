package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-level Prometheus collectors. Request-level
// metrics (latency, status) come from the logging middleware; these
// count domain outcomes.
type Metrics struct {
	FuelOptimizations *prometheus.CounterVec
	Suggestions       prometheus.Counter
	Observations      prometheus.Counter
	SuggestSeconds    prometheus.Histogram
	ActiveSessions    prometheus.Gauge
}

// NewMetrics registers the service collectors with the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a private
// registry so parallel servers don't collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FuelOptimizations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinkerline_fuel_optimizations_total",
			Help: "Fuel mix solves by outcome.",
		}, []string{"outcome"}),
		Suggestions: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinkerline_suggestions_total",
			Help: "Parameter suggestions served across all sessions.",
		}),
		Observations: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinkerline_observations_total",
			Help: "Observations recorded across all sessions.",
		}),
		SuggestSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clinkerline_suggest_duration_seconds",
			Help:    "Wall time of one suggestion, including surrogate refit.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "clinkerline_active_sessions",
			Help: "Live tuning sessions.",
		}),
	}
}

// Outcome labels for FuelOptimizations.
const (
	outcomeSuccess    = "success"
	outcomeInfeasible = "infeasible"
	outcomeInvalid    = "invalid"
)
