package voting

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/ahrav/go-ballot/internal/domain"
)

// ScoringRule runs the positional scoring rule defined by weights.
// weights must hold one entry per alternative; a copy is sorted
// descending so the highest weight goes to each agent's favourite, the
// next to the second favourite, and so on. The caller's slice is left
// untouched. Alternatives with the highest total win; ties go to policy.
func ScoringRule(
	profile domain.Profile,
	weights []float64,
	policy domain.TieBreak,
) (domain.Outcome, error) {
	if profile.NumAgents() == 0 {
		return domain.Outcome{}, domain.ErrEmptyProfile
	}
	if err := checkPolicy(policy); err != nil {
		return domain.Outcome{}, err
	}

	m := profile.NumAlternatives()
	if len(weights) != m {
		return domain.Outcome{}, fmt.Errorf("%w: got %d weights for %d alternatives",
			domain.ErrIncompatibleScoreVector, len(weights), m)
	}

	sorted := slices.Clone(weights)
	slices.SortFunc(sorted, func(a, b float64) int { return cmp.Compare(b, a) })

	totals := make([]float64, m)
	for _, ranking := range profile.Rankings() {
		for rank, alt := range ranking {
			totals[alt-1] += sorted[rank]
		}
	}

	outcome, err := decide(policy, argmax(totals), profile)
	if err != nil {
		return domain.Outcome{}, err
	}
	outcome.Scores = totals
	return outcome, nil
}

// PluralityVector gives one point to the favourite and none elsewhere.
func PluralityVector(m int) []float64 {
	v := make([]float64, m)
	if m > 0 {
		v[0] = 1
	}
	return v
}

// VetoVector gives one point to every rank except the last.
func VetoVector(m int) []float64 {
	v := make([]float64, m)
	for i := 0; i < m-1; i++ {
		v[i] = 1
	}
	return v
}

// BordaVector gives m-1 points to the favourite down to 0 for the least
// preferred alternative.
func BordaVector(m int) []float64 {
	v := make([]float64, m)
	for i := range m {
		v[i] = float64(m - 1 - i)
	}
	return v
}

// HarmonicVector gives 1/j points to the j-th most preferred alternative.
func HarmonicVector(m int) []float64 {
	v := make([]float64, m)
	for i := range m {
		v[i] = 1 / float64(i+1)
	}
	return v
}

// Plurality elects the alternative ranked first by the most agents.
func Plurality(profile domain.Profile, policy domain.TieBreak) (domain.Outcome, error) {
	return ScoringRule(profile, PluralityVector(profile.NumAlternatives()), policy)
}

// Veto elects the alternative ranked last by the fewest agents.
func Veto(profile domain.Profile, policy domain.TieBreak) (domain.Outcome, error) {
	return ScoringRule(profile, VetoVector(profile.NumAlternatives()), policy)
}

// Borda elects the alternative with the highest Borda count.
func Borda(profile domain.Profile, policy domain.TieBreak) (domain.Outcome, error) {
	return ScoringRule(profile, BordaVector(profile.NumAlternatives()), policy)
}

// Harmonic elects the alternative with the highest harmonic score.
func Harmonic(profile domain.Profile, policy domain.TieBreak) (domain.Outcome, error) {
	return ScoringRule(profile, HarmonicVector(profile.NumAlternatives()), policy)
}
