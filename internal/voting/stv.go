package voting

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ahrav/go-ballot/internal/domain"
)

// ballotBox is the working copy of a profile that STV mutates round by
// round. It is owned by a single STV call and never aliases the caller's
// profile.
type ballotBox struct {
	rankings  [][]domain.Alternative
	remaining map[domain.Alternative]struct{}
}

func newBallotBox(profile domain.Profile) *ballotBox {
	rankings := profile.Rankings()
	remaining := make(map[domain.Alternative]struct{}, profile.NumAlternatives())
	for _, ranking := range rankings {
		for _, alt := range ranking {
			remaining[alt] = struct{}{}
		}
	}
	return &ballotBox{rankings: rankings, remaining: remaining}
}

func (b *ballotBox) empty() bool { return len(b.remaining) == 0 }

// firstPlaces counts how many agents rank each remaining alternative
// first. Alternatives nobody ranks first are present with zero.
func (b *ballotBox) firstPlaces() map[domain.Alternative]int {
	tally := make(map[domain.Alternative]int, len(b.remaining))
	for alt := range b.remaining {
		tally[alt] = 0
	}
	for _, ranking := range b.rankings {
		if len(ranking) > 0 {
			tally[ranking[0]]++
		}
	}
	return tally
}

// eliminate removes every alternative in losers from every ranking.
func (b *ballotBox) eliminate(losers []domain.Alternative) {
	for i, ranking := range b.rankings {
		b.rankings[i] = slices.DeleteFunc(ranking, func(alt domain.Alternative) bool {
			return slices.Contains(losers, alt)
		})
	}
	for _, alt := range losers {
		delete(b.remaining, alt)
	}
}

// fewestFirstPlaces returns the alternatives holding the minimum tally, in
// ascending order.
func fewestFirstPlaces(tally map[domain.Alternative]int) []domain.Alternative {
	low := slices.Min(slices.Collect(maps.Values(tally)))
	losers := make([]domain.Alternative, 0, 1)
	for alt, n := range tally {
		if n == low {
			losers = append(losers, alt)
		}
	}
	slices.Sort(losers)
	return losers
}

// STV runs single transferable vote elimination.
// Each round removes every alternative with the fewest first places from
// all rankings at once. The set removed in the round that empties the
// rankings is the final candidate set; ties among it go to policy, which
// is resolved against the original profile.
func STV(profile domain.Profile, policy domain.TieBreak) (domain.Outcome, error) {
	if profile.NumAgents() == 0 {
		return domain.Outcome{}, domain.ErrEmptyProfile
	}
	if err := checkPolicy(policy); err != nil {
		return domain.Outcome{}, err
	}

	box := newBallotBox(profile)
	maxRounds := profile.NumAlternatives()
	rounds := make([]domain.Round, 0, maxRounds)

	var finalists []domain.Alternative
	for !box.empty() {
		if len(rounds) == maxRounds {
			// Every round removes at least one alternative.
			return domain.Outcome{}, fmt.Errorf("stv did not terminate within %d rounds", maxRounds)
		}

		tally := box.firstPlaces()
		finalists = fewestFirstPlaces(tally)
		box.eliminate(finalists)
		rounds = append(rounds, domain.Round{Tally: tally, Eliminated: finalists})
	}

	outcome, err := decide(policy, finalists, profile)
	if err != nil {
		return domain.Outcome{}, err
	}
	outcome.Rounds = rounds
	return outcome, nil
}
