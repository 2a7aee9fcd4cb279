package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TieBreakKind enumerates the supported tie-break policies.
type TieBreakKind uint8

// Supported tie-break policies. The zero value is deliberately not a policy
// so that an unset TieBreak is rejected.
const (
	// TieBreakMax selects the tied alternative with the largest index.
	TieBreakMax TieBreakKind = iota + 1
	// TieBreakMin selects the tied alternative with the smallest index.
	TieBreakMin
	// TieBreakAgent lets one agent's ranking decide among the tied set.
	TieBreakAgent
)

// Tokens accepted by ParseTieBreak for the index-based policies.
const (
	TieBreakTokenMax = "max"
	TieBreakTokenMin = "min"
)

// TieBreak is a validated tie-break policy: ByMax, ByMin or ByAgent.
type TieBreak struct {
	kind  TieBreakKind
	agent Agent
}

// ByMax returns the policy selecting the largest tied alternative.
func ByMax() TieBreak { return TieBreak{kind: TieBreakMax} }

// ByMin returns the policy selecting the smallest tied alternative.
func ByMin() TieBreak { return TieBreak{kind: TieBreakMin} }

// ByAgent returns the policy deferring to the ranking of agent.
// Whether agent exists is only known once a profile is consulted.
func ByAgent(agent Agent) TieBreak { return TieBreak{kind: TieBreakAgent, agent: agent} }

// ParseTieBreak converts a caller-supplied token into a TieBreak.
// It accepts "max" and "min" in any letter case, or a positive integer
// agent index. Anything else yields ErrInvalidTieBreak.
func ParseTieBreak(token string) (TieBreak, error) {
	trimmed := strings.TrimSpace(token)
	switch strings.ToLower(trimmed) {
	case TieBreakTokenMax:
		return ByMax(), nil
	case TieBreakTokenMin:
		return ByMin(), nil
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 {
		return TieBreak{}, fmt.Errorf("%w: %q: choose %q, %q or an agent number",
			ErrInvalidTieBreak, token, TieBreakTokenMax, TieBreakTokenMin)
	}
	return ByAgent(Agent(n)), nil
}

// Kind returns the policy kind. It is zero for an unset TieBreak.
func (t TieBreak) Kind() TieBreakKind { return t.kind }

// Agent returns the deciding agent for ByAgent policies.
func (t TieBreak) Agent() (Agent, bool) {
	if t.kind != TieBreakAgent {
		return 0, false
	}
	return t.agent, true
}

// Valid reports whether t is one of the three supported policies.
func (t TieBreak) Valid() bool {
	switch t.kind {
	case TieBreakMax, TieBreakMin:
		return true
	case TieBreakAgent:
		return t.agent >= 1
	default:
		return false
	}
}

// String returns the token form of the policy, as accepted by ParseTieBreak.
func (t TieBreak) String() string {
	switch t.kind {
	case TieBreakMax:
		return TieBreakTokenMax
	case TieBreakMin:
		return TieBreakTokenMin
	case TieBreakAgent:
		return strconv.Itoa(int(t.agent))
	default:
		return "invalid"
	}
}

// Label returns a low-cardinality name of the policy kind for metrics.
func (t TieBreak) Label() string {
	if t.kind == TieBreakAgent {
		return "agent"
	}
	return t.String()
}
