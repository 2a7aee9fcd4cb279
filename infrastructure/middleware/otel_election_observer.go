package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.ElectionObserver = (*OTelElectionObserver)(nil)

const tracerName = "github.com/ahrav/go-ballot/election"

// OTelElectionObserver implements observability for rule runs using
// OpenTelemetry tracing. Every rule run gets its own span carrying the
// rule identity, the winner, and events for broken ties and elimination
// rounds. The span travels in the context, so one observer serves any
// number of concurrent rules.
type OTelElectionObserver struct {
	tracer trace.Tracer
}

// NewOTelElectionObserver creates an observer using tp, or the global
// tracer provider when tp is nil.
func NewOTelElectionObserver(tp trace.TracerProvider) *OTelElectionObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelElectionObserver{tracer: tp.Tracer(tracerName)}
}

// RuleStarted implements the ElectionObserver interface. It starts a span
// for the rule and returns a context carrying it.
func (o *OTelElectionObserver) RuleStarted(ctx context.Context, election string, rule ports.Rule) context.Context {
	ctx, _ = o.tracer.Start(ctx, "Rule.Elect", trace.WithAttributes(
		attribute.String("election.name", election),
		attribute.String("rule.name", rule.Name()),
		attribute.String("rule.type", rule.Type()),
	))
	return ctx
}

// RuleFinished implements the ElectionObserver interface. It records the
// result on the span started by RuleStarted and ends it.
func (o *OTelElectionObserver) RuleFinished(
	ctx context.Context,
	rule ports.Rule,
	outcome domain.Outcome,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(attribute.Int64("rule.elapsed_us", elapsed.Microseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(
		attribute.Int("outcome.winner", int(outcome.Winner)),
		attribute.Int("outcome.tied", len(outcome.Tied)),
	)

	if outcome.TieBroken() {
		span.AddEvent("tie.broken", trace.WithAttributes(
			attribute.IntSlice("tie.candidates", alternativesToInts(outcome.Tied)),
			attribute.Int("tie.winner", int(outcome.Winner)),
		))
	}

	for i, round := range outcome.Rounds {
		span.AddEvent("stv.round", trace.WithAttributes(
			attribute.Int("round", i+1),
			attribute.Int("remaining", len(round.Tally)),
			attribute.IntSlice("eliminated", alternativesToInts(round.Eliminated)),
		))
	}

	span.SetStatus(codes.Ok, "rule decided")
}

func alternativesToInts(alts []domain.Alternative) []int {
	out := make([]int, len(alts))
	for i, a := range alts {
		out[i] = int(a)
	}
	return out
}
