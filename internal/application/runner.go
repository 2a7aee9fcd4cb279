package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

const (
	defaultRunnerLimit  = 4
	unnamedElectionName = "unnamed"
)

// RunnerConfig configures a Runner. Every field is optional.
type RunnerConfig struct {
	// Logger receives rule results. Defaults to slog.Default().
	Logger *slog.Logger
	// Metrics records per-rule latency and outcome counters.
	Metrics ports.MetricsCollector
	// Observer is notified around every rule execution.
	Observer ports.ElectionObserver
	// Concurrency bounds how many rules of one election run at once.
	// Values below 1 select a default of 4.
	Concurrency int
}

// Runner applies every rule of an election to its ballot and reports one
// Verdict per rule. A failing rule yields a verdict carrying the failure
// and never stops the other rules.
type Runner struct {
	logger      *slog.Logger
	metrics     ports.MetricsCollector
	observer    ports.ElectionObserver
	concurrency int
}

// NewRunner creates a Runner from config.
func NewRunner(config RunnerConfig) *Runner {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = defaultRunnerLimit
	}

	return &Runner{
		logger:      logger.With("component", "runner"),
		metrics:     config.Metrics,
		observer:    config.Observer,
		concurrency: concurrency,
	}
}

// Run evaluates the rules of election and returns their verdicts in rule
// declaration order. Rules share the election's immutable ballot and may
// run in parallel. Run only returns an error when ctx is done before every
// rule has been attempted.
func (r *Runner) Run(ctx context.Context, election *Election) ([]domain.Verdict, error) {
	if election == nil {
		return nil, errors.New("election cannot be nil")
	}

	name := election.Name
	if name == "" {
		name = unnamedElectionName
	}

	verdicts := make([]domain.Verdict, len(election.Rules))

	// A plain group: rule failures are recorded in their verdicts, so one
	// rule never cancels the others and Go funcs never return an error.
	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, rule := range election.Rules {
		g.Go(func() error {
			verdicts[i] = r.runRule(ctx, name, election.Ballot, rule)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return verdicts, err
	}

	if err := ctx.Err(); err != nil {
		return verdicts, fmt.Errorf("election %s interrupted: %w", name, err)
	}
	return verdicts, nil
}

// runRule executes one rule and converts its result into a verdict.
func (r *Runner) runRule(
	ctx context.Context,
	election string,
	ballot ports.Ballot,
	rule ports.Rule,
) domain.Verdict {
	if r.observer != nil {
		ctx = r.observer.RuleStarted(ctx, election, rule)
	}

	start := time.Now()
	outcome, err := rule.Elect(ctx, ballot)
	elapsed := time.Since(start)

	if r.observer != nil {
		r.observer.RuleFinished(ctx, rule, outcome, elapsed, err)
	}

	verdict := domain.Verdict{
		ID:       uuid.NewString(),
		Election: election,
		Rule:     rule.Name(),
		RuleType: rule.Type(),
		Elapsed:  elapsed,
	}

	if err != nil {
		ruleErr := domain.NewRuleError(rule.Name(), err)
		verdict.Failure = err.Error()
		r.logger.Warn("rule failed",
			"election", election,
			"rule", rule.Name(),
			"type", rule.Type(),
			"error", ruleErr,
		)
		r.recordMetrics(verdict)
		return verdict
	}

	verdict.Outcome = outcome
	r.logger.Debug("rule decided",
		"election", election,
		"rule", rule.Name(),
		"type", rule.Type(),
		"winner", int(outcome.Winner),
		"tie_broken", outcome.TieBroken(),
		"elapsed", elapsed,
	)
	r.recordMetrics(verdict)
	return verdict
}

func (r *Runner) recordMetrics(verdict domain.Verdict) {
	if r.metrics == nil {
		return
	}

	labels := map[string]string{"rule": verdict.RuleType}
	r.metrics.RecordLatency(ports.MetricRuleLatency, verdict.Elapsed, labels)

	if !verdict.Decided() {
		r.metrics.RecordCounter(ports.MetricRulesFailed, 1, labels)
		return
	}

	r.metrics.RecordCounter(ports.MetricRulesDecided, 1, labels)
	if verdict.Outcome.TieBroken() {
		r.metrics.RecordCounter(ports.MetricTieBreaks, 1, labels)
	}
	if len(verdict.Outcome.Rounds) > 0 {
		r.metrics.RecordHistogram(ports.MetricSTVRounds, float64(len(verdict.Outcome.Rounds)), labels)
	}
}
