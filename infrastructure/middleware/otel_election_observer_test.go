package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// recordingSpan keeps what the observer writes to a span.
type recordingSpan struct {
	noop.Span
	name        string
	attrs       map[attribute.Key]attribute.Value
	events      []string
	status      codes.Code
	description string
	errs        []error
	ended       bool
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordingSpan) AddEvent(name string, _ ...trace.EventOption) {
	s.events = append(s.events, name)
}

func (s *recordingSpan) SetStatus(code codes.Code, description string) {
	s.status = code
	s.description = description
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

func (s *recordingSpan) IsRecording() bool { return true }

// recordingTracer hands out recordingSpans.
type recordingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	spans []*recordingSpan
}

func (t *recordingTracer) Start(
	ctx context.Context, name string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	span := &recordingSpan{name: name, attrs: make(map[attribute.Key]attribute.Value)}
	cfg := trace.NewSpanStartConfig(opts...)
	span.SetAttributes(cfg.Attributes()...)

	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()

	return trace.ContextWithSpan(ctx, span), span
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer { return p.tracer }

type stubRule struct{ name, kind string }

func (r stubRule) Name() string    { return r.name }
func (r stubRule) Type() string    { return r.kind }
func (r stubRule) Validate() error { return nil }
func (r stubRule) Elect(context.Context, ports.Ballot) (domain.Outcome, error) {
	return domain.Outcome{}, nil
}

func TestOTelElectionObserver(t *testing.T) {
	tests := []struct {
		name       string
		outcome    domain.Outcome
		err        error
		wantStatus codes.Code
		wantEvents []string
		wantWinner int64
	}{
		{
			name:       "decided without tie",
			outcome:    domain.Outcome{Winner: 2, Tied: []domain.Alternative{2}},
			wantStatus: codes.Ok,
			wantWinner: 2,
		},
		{
			name:       "tie broken",
			outcome:    domain.Outcome{Winner: 3, Tied: []domain.Alternative{2, 3}},
			wantStatus: codes.Ok,
			wantEvents: []string{"tie.broken"},
			wantWinner: 3,
		},
		{
			name: "elimination rounds",
			outcome: domain.Outcome{
				Winner: 1,
				Tied:   []domain.Alternative{1},
				Rounds: []domain.Round{
					{Tally: map[domain.Alternative]int{1: 2, 2: 1, 3: 0}, Eliminated: []domain.Alternative{3}},
					{Tally: map[domain.Alternative]int{1: 2, 2: 1}, Eliminated: []domain.Alternative{2}},
					{Tally: map[domain.Alternative]int{1: 3}, Eliminated: []domain.Alternative{1}},
				},
			},
			wantStatus: codes.Ok,
			wantEvents: []string{"stv.round", "stv.round", "stv.round"},
			wantWinner: 1,
		},
		{
			name:       "rule failed",
			err:        domain.ErrInvalidAgent,
			wantStatus: codes.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer := &recordingTracer{}
			observer := NewOTelElectionObserver(recordingProvider{tracer: tracer})
			rule := stubRule{name: "r1", kind: "borda"}

			ctx := observer.RuleStarted(context.Background(), "council", rule)
			observer.RuleFinished(ctx, rule, tt.outcome, time.Millisecond, tt.err)

			require.Len(t, tracer.spans, 1)
			span := tracer.spans[0]

			assert.Equal(t, "Rule.Elect", span.name)
			assert.True(t, span.ended)
			assert.Equal(t, tt.wantStatus, span.status)
			assert.Equal(t, tt.wantEvents, span.events)
			assert.Equal(t, "council", span.attrs["election.name"].AsString())
			assert.Equal(t, "r1", span.attrs["rule.name"].AsString())
			assert.Equal(t, "borda", span.attrs["rule.type"].AsString())
			assert.Equal(t, int64(1000), span.attrs["rule.elapsed_us"].AsInt64())

			if tt.err != nil {
				require.Len(t, span.errs, 1)
				assert.True(t, errors.Is(span.errs[0], tt.err))
				_, hasWinner := span.attrs["outcome.winner"]
				assert.False(t, hasWinner)
				return
			}
			assert.Equal(t, tt.wantWinner, span.attrs["outcome.winner"].AsInt64())
		})
	}
}

func TestOTelElectionObserver_DefaultProvider(t *testing.T) {
	observer := NewOTelElectionObserver(nil)
	rule := stubRule{name: "r1", kind: "stv"}

	assert.NotPanics(t, func() {
		ctx := observer.RuleStarted(context.Background(), "council", rule)
		observer.RuleFinished(ctx, rule, domain.Outcome{Winner: 1}, time.Millisecond, nil)
	})
}
