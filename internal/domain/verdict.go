package domain

import (
	"time"
)

// Round captures one elimination round of single transferable vote.
type Round struct {
	// Tally is the number of first places held by every alternative still
	// in the running at the start of the round.
	Tally map[Alternative]int `json:"tally"`

	// Eliminated lists the alternatives removed at the end of the round,
	// in ascending order.
	Eliminated []Alternative `json:"eliminated"`
}

// Outcome is the result of applying one voting rule to one election.
type Outcome struct {
	// Winner is the single winning alternative.
	Winner Alternative `json:"winner"`

	// Tied is the winner set produced by the rule before tie-breaking, in
	// ascending order. It holds only the winner when no tie occurred.
	Tied []Alternative `json:"tied"`

	// Scores holds the total of every alternative, indexed by
	// alternative-1, for rules that compute totals.
	Scores []float64 `json:"scores,omitempty"`

	// Rounds records the elimination rounds of rules that eliminate.
	Rounds []Round `json:"rounds,omitempty"`
}

// TieBroken reports whether the tie breaker had to pick the winner.
func (o Outcome) TieBroken() bool { return len(o.Tied) > 1 }

// Verdict represents the reported result of one rule within an election.
// A verdict either carries a winner or a failure reason, never both.
type Verdict struct {
	// ID uniquely identifies this verdict (a UUID).
	ID string `json:"id"`

	// Election is the name of the election the rule ran in.
	Election string `json:"election"`

	// Rule is the configured identifier of the rule.
	Rule string `json:"rule"`

	// RuleType is the kind of rule, such as "borda" or "stv".
	RuleType string `json:"rule_type"`

	// Outcome is the rule result. It is the zero value when Failure is set.
	Outcome Outcome `json:"outcome"`

	// Failure describes why the rule produced no winner.
	Failure string `json:"failure,omitempty"`

	// Elapsed is how long the rule took to run.
	Elapsed time.Duration `json:"elapsed"`
}

// Decided reports whether the verdict carries a winner.
func (v Verdict) Decided() bool { return v.Failure == "" && v.Outcome.Winner > 0 }
