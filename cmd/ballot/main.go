// Command ballot runs every voting rule of an election file and prints the
// preference profile followed by one verdict per rule.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahrav/go-ballot/infrastructure/middleware"
	"github.com/ahrav/go-ballot/internal/application"
	"github.com/ahrav/go-ballot/internal/domain"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Election YAML file (required)")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn or error")
		jsonOutput  = flag.Bool("json", false, "Print verdicts as JSON instead of text")
		concurrency = flag.Int("concurrency", 4, "Maximum number of rules evaluated at once")
		metricsOut  = flag.String("metrics-out", "", "Write Prometheus metrics in text format to this file")
	)
	flag.Parse()

	logger, err := newLogger(os.Stderr, *logFormat, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "missing -config")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, options{
		configPath:  *configPath,
		jsonOutput:  *jsonOutput,
		concurrency: *concurrency,
		metricsOut:  *metricsOut,
	}); err != nil {
		logger.Error("ballot failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	jsonOutput  bool
	concurrency int
	metricsOut  string
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	registry := application.NewDefaultRuleRegistry()
	loader, err := application.NewElectionLoader(registry)
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}

	election, err := loader.LoadFromFile(ctx, opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load election: %w", err)
	}
	logger.Info("election loaded",
		"election", election.Name,
		"agents", election.Ballot.Table.NumAgents(),
		"alternatives", election.Ballot.Table.NumAlternatives(),
		"rules", len(election.Rules),
	)

	reg := prometheus.NewRegistry()
	runner := application.NewRunner(application.RunnerConfig{
		Logger:      logger,
		Metrics:     middleware.NewPrometheusMetrics(reg),
		Observer:    middleware.NewOTelElectionObserver(nil),
		Concurrency: opts.concurrency,
	})

	verdicts, err := runner.Run(ctx, election)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(verdicts); err != nil {
			return fmt.Errorf("failed to encode verdicts: %w", err)
		}
	} else {
		printProfile(os.Stdout, election.Ballot.Profile)
		printVerdicts(os.Stdout, verdicts)
	}

	if opts.metricsOut != "" {
		if err := prometheus.WriteToTextfile(opts.metricsOut, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q: %w", level, err)
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid -log-format %q: choose text or json", format)
	}
}

func printProfile(w io.Writer, profile domain.Profile) {
	fmt.Fprintln(w, "Preference profile:")
	for i, ranking := range profile.Rankings() {
		fmt.Fprintf(w, "  agent %d: %s\n", i+1, joinAlternatives(ranking, " > "))
	}
	fmt.Fprintln(w)
}

func printVerdicts(w io.Writer, verdicts []domain.Verdict) {
	fmt.Fprintln(w, "Verdicts:")
	for _, v := range verdicts {
		switch {
		case !v.Decided():
			fmt.Fprintf(w, "  %s (%s): no winner: %s\n", v.Rule, v.RuleType, v.Failure)
		case v.Outcome.TieBroken():
			fmt.Fprintf(w, "  %s (%s): winner %d, tie among {%s} broken\n",
				v.Rule, v.RuleType, v.Outcome.Winner, joinAlternatives(v.Outcome.Tied, ", "))
		default:
			fmt.Fprintf(w, "  %s (%s): winner %d\n", v.Rule, v.RuleType, v.Outcome.Winner)
		}
	}
}

func joinAlternatives(alts []domain.Alternative, sep string) string {
	parts := make([]string, len(alts))
	for i, a := range alts {
		parts[i] = fmt.Sprint(int(a))
	}
	return strings.Join(parts, sep)
}
