// Package domain contains pure, dependency-free domain models and types
// for the voting engine.
package domain

import (
	"fmt"
	"math"
	"slices"
)

// Alternative identifies one of the options being voted on.
// Alternatives are numbered from 1 in column order of the valuation table.
type Alternative int

// Agent identifies a voter. Agents are numbered from 1 in row order of the
// valuation table.
type Agent int

// ValuationTable is an immutable, rectangular, agent-major grid of
// valuations. Row i holds the valuations of agent i+1 and column j holds
// the valuations given to alternative j+1.
// The zero value is an empty table; use NewValuationTable to build one.
type ValuationTable struct {
	rows [][]float64
}

// NewValuationTable validates rows and returns a ValuationTable holding a
// private copy of them.
// The table must have at least one row, every row must have the same
// non-zero length, and every cell must be finite.
// All problems are collected into a single ValidationError wrapped with
// ErrMalformedTable.
func NewValuationTable(rows [][]float64) (ValuationTable, error) {
	verr := NewValidationError("valuation table")

	if len(rows) == 0 {
		verr.AddError("table has no rows")
		return ValuationTable{}, fmt.Errorf("%w: %w", ErrMalformedTable, verr)
	}

	width := len(rows[0])
	if width == 0 {
		verr.AddError("row 1 has no valuations")
	}

	copied := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != width {
			verr.AddErrorf("row %d has %d valuations, want %d", i+1, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				verr.AddErrorf("row %d column %d is not a finite number", i+1, j+1)
			}
		}
		copied[i] = slices.Clone(row)
	}

	if verr.HasErrors() {
		return ValuationTable{}, fmt.Errorf("%w: %w", ErrMalformedTable, verr)
	}

	return ValuationTable{rows: copied}, nil
}

// NumAgents returns the number of rows of the table.
func (t ValuationTable) NumAgents() int { return len(t.rows) }

// NumAlternatives returns the number of columns of the table.
func (t ValuationTable) NumAlternatives() int {
	if len(t.rows) == 0 {
		return 0
	}
	return len(t.rows[0])
}

// Row returns a copy of the valuations of the given agent.
// It returns false if the agent is not part of the table.
func (t ValuationTable) Row(agent Agent) ([]float64, bool) {
	if agent < 1 || int(agent) > len(t.rows) {
		return nil, false
	}
	return slices.Clone(t.rows[agent-1]), true
}

// Rows returns a deep copy of the whole table.
func (t ValuationTable) Rows() [][]float64 {
	out := make([][]float64, len(t.rows))
	for i, row := range t.rows {
		out[i] = slices.Clone(row)
	}
	return out
}

// Profile maps every agent to its ranking of all alternatives, most
// preferred first. A Profile is immutable once built; accessors hand out
// copies.
type Profile struct {
	rankings [][]Alternative
}

// NewProfile validates rankings and returns a Profile holding a private
// copy of them. rankings[i] is the ranking of agent i+1.
// Every ranking must be a permutation of 1..m for the same m >= 1.
func NewProfile(rankings [][]Alternative) (Profile, error) {
	if len(rankings) == 0 {
		return Profile{}, ErrEmptyProfile
	}

	m := len(rankings[0])
	if m == 0 {
		return Profile{}, fmt.Errorf("%w: agent 1 ranks no alternatives", ErrMalformedProfile)
	}

	copied := make([][]Alternative, len(rankings))
	seen := make([]bool, m+1)
	for i, ranking := range rankings {
		if len(ranking) != m {
			return Profile{}, fmt.Errorf("%w: agent %d ranks %d alternatives, want %d",
				ErrMalformedProfile, i+1, len(ranking), m)
		}
		clear(seen)
		for _, alt := range ranking {
			if alt < 1 || int(alt) > m || seen[alt] {
				return Profile{}, fmt.Errorf("%w: agent %d ranking %v is not a permutation of 1..%d",
					ErrMalformedProfile, i+1, ranking, m)
			}
			seen[alt] = true
		}
		copied[i] = slices.Clone(ranking)
	}

	return Profile{rankings: copied}, nil
}

// NumAgents returns the number of agents in the profile.
func (p Profile) NumAgents() int { return len(p.rankings) }

// NumAlternatives returns the number of alternatives every agent ranks.
func (p Profile) NumAlternatives() int {
	if len(p.rankings) == 0 {
		return 0
	}
	return len(p.rankings[0])
}

// Ranking returns a copy of the ranking of the given agent.
// It returns false if the agent is not part of the profile.
func (p Profile) Ranking(agent Agent) ([]Alternative, bool) {
	if agent < 1 || int(agent) > len(p.rankings) {
		return nil, false
	}
	return slices.Clone(p.rankings[agent-1]), true
}

// Rankings returns a deep copy of every ranking in agent order.
func (p Profile) Rankings() [][]Alternative {
	out := make([][]Alternative, len(p.rankings))
	for i, ranking := range p.rankings {
		out[i] = slices.Clone(ranking)
	}
	return out
}

// Equal reports whether two profiles hold identical rankings.
func (p Profile) Equal(other Profile) bool {
	return slices.EqualFunc(p.rankings, other.rankings, slices.Equal[[]Alternative])
}
