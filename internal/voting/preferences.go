// Package voting implements the social-choice rules of the engine: building
// preference profiles from valuations, positional scoring, single
// transferable vote, range voting, dictatorship and tie-breaking.
// Every function is a pure computation over its arguments and is safe to
// call from multiple goroutines on shared inputs.
package voting

import (
	"cmp"
	"slices"

	"github.com/ahrav/go-ballot/internal/domain"
)

// valuedAlternative pairs an alternative with one agent's valuation of it.
type valuedAlternative struct {
	alt   domain.Alternative
	value float64
}

// BuildProfile converts a valuation table into a preference profile.
// Each agent ranks alternatives by valuation, highest first. Equal
// valuations rank the alternative with the larger index first: the pairs
// are laid out index-descending and then stably sorted by valuation.
func BuildProfile(table domain.ValuationTable) (domain.Profile, error) {
	if table.NumAgents() == 0 {
		return domain.Profile{}, domain.ErrEmptyProfile
	}

	m := table.NumAlternatives()
	rankings := make([][]domain.Alternative, table.NumAgents())
	pairs := make([]valuedAlternative, m)

	for i := range rankings {
		row, _ := table.Row(domain.Agent(i + 1))
		for j := range m {
			// Position 0 holds alternative m.
			pairs[j] = valuedAlternative{alt: domain.Alternative(m - j), value: row[m-j-1]}
		}

		slices.SortStableFunc(pairs, func(a, b valuedAlternative) int {
			return cmp.Compare(b.value, a.value)
		})

		ranking := make([]domain.Alternative, m)
		for j, p := range pairs {
			ranking[j] = p.alt
		}
		rankings[i] = ranking
	}

	return domain.NewProfile(rankings)
}
