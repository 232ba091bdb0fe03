package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/fairvalue/internal/contracts"
)

// Metrics holds the Prometheus collectors for valuation runs
type Metrics struct {
	registry *prometheus.Registry

	Runs        *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	StageRuns   *prometheus.CounterVec
}

// NewMetrics registers the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairvalue_runs_total",
				Help: "Total number of valuation runs by outcome",
			},
			[]string{"outcome"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fairvalue_run_duration_seconds",
				Help:    "Duration of valuation runs in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"outcome"},
		),

		StageRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairvalue_stage_completions_total",
				Help: "Total number of completed pipeline stages",
			},
			[]string{"stage"},
		),
	}

	m.registry.MustRegister(m.Runs, m.RunDuration, m.StageRuns)
	m.registry.MustRegister(collectors.NewGoCollector())
	return m
}

// ObserveRun records one run outcome
func (m *Metrics) ObserveRun(outcome string, duration time.Duration) {
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveStages counts the stages a run completed
func (m *Metrics) ObserveStages(stages []contracts.Stage) {
	for _, s := range stages {
		m.StageRuns.WithLabelValues(s.ShortName()).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
