// Package metrics defines Prometheus instrumentation for rule
// interpretation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"genoscope-hq/callisto/pkg/config"
)

// InterpretMetrics tracks rule-interpretation activity.
//
// Metrics:
//   - callisto_interpret_evaluations_total: evaluations by drug and outcome
//   - callisto_interpret_evaluation_duration_seconds: evaluation duration by drug
//   - callisto_interpret_parse_failures_total: corpus rules that failed to parse
//   - callisto_interpret_missing_positions_total: evaluations aborted by an absent position
//   - callisto_interpret_corpus_reloads_total: corpus reloads by result
type InterpretMetrics struct {
	evaluationsTotal      *prometheus.CounterVec
	evaluationDuration    *prometheus.HistogramVec
	parseFailuresTotal    prometheus.Counter
	missingPositionsTotal *prometheus.CounterVec
	corpusReloadsTotal    *prometheus.CounterVec
}

// NewInterpretMetrics creates and registers interpretation metrics with the
// provided registry.
func NewInterpretMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *InterpretMetrics {
	m := &InterpretMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"drug", "outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of a single rule evaluation in seconds",
				// Rule evaluations are in-memory tree walks (< 1ms)
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"drug"},
		),

		parseFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parse_failures_total",
				Help:      "Total number of corpus rules that failed to parse",
			},
		),

		missingPositionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "missing_positions_total",
				Help:      "Total number of evaluations aborted because the sample lacked a rule position",
			},
			[]string{"drug"},
		),

		corpusReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "corpus_reloads_total",
				Help:      "Total number of rule-corpus reloads",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.parseFailuresTotal,
		m.missingPositionsTotal,
		m.corpusReloadsTotal,
	)

	return m
}

// RecordEvaluation records one rule evaluation.
//
// outcome is "resistant", "susceptible", or "error".
func (m *InterpretMetrics) RecordEvaluation(drug, outcome string, duration time.Duration) {
	m.evaluationsTotal.WithLabelValues(drug, outcome).Inc()
	m.evaluationDuration.WithLabelValues(drug).Observe(duration.Seconds())
}

// RecordParseFailure records a corpus rule that failed to parse.
func (m *InterpretMetrics) RecordParseFailure() {
	m.parseFailuresTotal.Inc()
}

// RecordMissingPosition records an evaluation aborted by an absent sequence
// position.
func (m *InterpretMetrics) RecordMissingPosition(drug string) {
	m.missingPositionsTotal.WithLabelValues(drug).Inc()
}

// RecordCorpusReload records a corpus reload with result "ok" or "error".
func (m *InterpretMetrics) RecordCorpusReload(result string) {
	m.corpusReloadsTotal.WithLabelValues(result).Inc()
}
