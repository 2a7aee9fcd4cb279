package voting

import (
	"fmt"

	"github.com/ahrav/go-ballot/internal/domain"
)

// RangeVoting elects the alternative with the highest sum of raw
// valuations. A profile is only built when a tie has to be broken by an
// agent.
func RangeVoting(table domain.ValuationTable, policy domain.TieBreak) (domain.Outcome, error) {
	if table.NumAgents() == 0 {
		return domain.Outcome{}, fmt.Errorf("%w: table has no rows", domain.ErrMalformedTable)
	}
	if err := checkPolicy(policy); err != nil {
		return domain.Outcome{}, err
	}

	sums := make([]float64, table.NumAlternatives())
	for _, row := range table.Rows() {
		for j, v := range row {
			sums[j] += v
		}
	}

	winners := argmax(sums)

	var profile domain.Profile
	if len(winners) > 1 && policy.Kind() == domain.TieBreakAgent {
		var err error
		if profile, err = BuildProfile(table); err != nil {
			return domain.Outcome{}, fmt.Errorf("failed to build profile for tie break: %w", err)
		}
	}

	outcome, err := decide(policy, winners, profile)
	if err != nil {
		return domain.Outcome{}, err
	}
	outcome.Scores = sums
	return outcome, nil
}
