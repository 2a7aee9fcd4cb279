package voting

import (
	"fmt"
	"slices"

	"github.com/ahrav/go-ballot/internal/domain"
)

// BreakTie resolves a set of co-winning alternatives to a single winner.
// ByMax and ByMin pick the largest or smallest index and ignore profile.
// ByAgent scans the agent's ranking in profile and returns the first
// alternative that is also a candidate, making the agent a dictator over
// the tied set.
func BreakTie(
	policy domain.TieBreak,
	candidates []domain.Alternative,
	profile domain.Profile,
) (domain.Alternative, error) {
	if len(candidates) == 0 {
		return 0, domain.ErrNoCandidates
	}

	switch policy.Kind() {
	case domain.TieBreakMax:
		return slices.Max(candidates), nil
	case domain.TieBreakMin:
		return slices.Min(candidates), nil
	case domain.TieBreakAgent:
		agent, _ := policy.Agent()
		ranking, ok := profile.Ranking(agent)
		if !ok {
			return 0, fmt.Errorf("%w: agent %d not in profile of %d agents",
				domain.ErrInvalidAgent, agent, profile.NumAgents())
		}
		for _, alt := range ranking {
			if slices.Contains(candidates, alt) {
				return alt, nil
			}
		}
		return 0, fmt.Errorf("%w: agent %d ranks none of %v", domain.ErrNoCandidates, agent, candidates)
	default:
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidTieBreak, policy)
	}
}

// decide turns a winner set into an Outcome, consulting the tie breaker
// only when more than one alternative is tied.
func decide(
	policy domain.TieBreak,
	winners []domain.Alternative,
	profile domain.Profile,
) (domain.Outcome, error) {
	if len(winners) == 1 {
		return domain.Outcome{Winner: winners[0], Tied: winners}, nil
	}

	winner, err := BreakTie(policy, winners, profile)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("tie break among %v failed: %w", winners, err)
	}
	return domain.Outcome{Winner: winner, Tied: winners}, nil
}

// checkPolicy rejects an unset or otherwise unusable policy before a rule
// does any work.
func checkPolicy(policy domain.TieBreak) error {
	if !policy.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTieBreak, policy)
	}
	return nil
}

// argmax returns the alternatives whose total equals the maximum total,
// in ascending order. totals is indexed by alternative-1.
func argmax(totals []float64) []domain.Alternative {
	best := slices.Max(totals)
	winners := make([]domain.Alternative, 0, 1)
	for i, total := range totals {
		if total == best {
			winners = append(winners, domain.Alternative(i+1))
		}
	}
	return winners
}
