package compiler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	formText = "text"
	formJSON = "json"
)

// Metrics counts the programs a Loader builds.
type Metrics struct {
	units      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	statements prometheus.Counter
}

// NewMetrics creates the loader collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		units: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "floyd_units_total",
				Help: "Number of programs parsed or decoded.",
			},
			[]string{"form", "result"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "floyd_build_duration_seconds",
				Help:    "Time spent building an AST.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"form"},
		),
		statements: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "floyd_statements_total",
				Help: "Number of top-level statements built.",
			},
		),
	}
}

func (m *Metrics) observe(form string, start time.Time, statements int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.units.WithLabelValues(form, result).Inc()
	m.duration.WithLabelValues(form).Observe(time.Since(start).Seconds())
	m.statements.Add(float64(statements))
}
