package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-ballot/internal/domain"
)

// Metric names reported by the election runner.
const (
	MetricRuleLatency  = "rule_execution"
	MetricRulesDecided = "rules_decided_total"
	MetricRulesFailed  = "rules_failed_total"
	MetricTieBreaks    = "tie_breaks_total"
	MetricSTVRounds    = "stv_rounds"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like decided rules, failures and
	// tie breaks.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like elimination rounds.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// ElectionObserver receives notifications around every rule execution.
// Implementations typically open a trace span in RuleStarted and close it
// in RuleFinished.
type ElectionObserver interface {
	// RuleStarted is called before a rule runs. The returned context is
	// passed to the rule and to RuleFinished.
	RuleStarted(ctx context.Context, election string, rule Rule) context.Context

	// RuleFinished is called after a rule returns, with its outcome or error.
	RuleFinished(ctx context.Context, rule Rule, outcome domain.Outcome, elapsed time.Duration, err error)
}
