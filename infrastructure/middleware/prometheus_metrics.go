// Package middleware provides cross-cutting concerns for the election
// engine: Prometheus metrics and OpenTelemetry tracing around rule runs.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-ballot/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. The metric names declared in ports get dedicated series;
// any other counter lands in ballot_operations_total and any other
// histogram value in ballot_values.
type PrometheusMetrics struct {
	ruleLatency      *prometheus.HistogramVec
	ruleOutcomes     *prometheus.CounterVec
	tieBreaks        *prometheus.CounterVec
	stvRounds        *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	values           *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and
// registers all metrics with reg. A nil reg selects the global
// Prometheus registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		ruleLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ballot_rule_duration_seconds",
				Help:    "Execution time of voting rules.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"operation", "rule"},
		),
		ruleOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ballot_rule_results_total",
				Help: "Total number of rule runs by result.",
			},
			[]string{"rule", "result"},
		),
		tieBreaks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ballot_tie_breaks_total",
				Help: "Total number of winners picked by the tie breaker.",
			},
			[]string{"rule"},
		),
		stvRounds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ballot_stv_rounds",
				Help:    "Number of elimination rounds per single transferable vote run.",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
			[]string{"rule"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ballot_operations_total",
				Help: "Total number of other operations reported to the collector.",
			},
			[]string{"operation", "rule"},
		),
		values: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ballot_values",
				Help:    "Distribution of other values reported to the collector.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric", "rule"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.ruleLatency.WithLabelValues(operation, ruleLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	rule := ruleLabel(labels)

	switch metric {
	case ports.MetricRulesDecided:
		pm.ruleOutcomes.WithLabelValues(rule, "decided").Add(value)
	case ports.MetricRulesFailed:
		pm.ruleOutcomes.WithLabelValues(rule, "failed").Add(value)
	case ports.MetricTieBreaks:
		pm.tieBreaks.WithLabelValues(rule).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, rule).Add(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	rule := ruleLabel(labels)

	if metric == ports.MetricSTVRounds {
		pm.stvRounds.WithLabelValues(rule).Observe(value)
		return
	}
	pm.values.WithLabelValues(metric, rule).Observe(value)
}

func ruleLabel(labels map[string]string) string {
	if rule := labels["rule"]; rule != "" {
		return rule
	}
	return "unknown"
}
