package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/testutils"
)

func TestRangeVoting(t *testing.T) {
	// Column sums are 10, 15 and 15.
	tied := [][]float64{
		{4, 5, 10},
		{6, 10, 5},
	}

	tests := []struct {
		name           string
		rows           [][]float64
		policy         domain.TieBreak
		expectedWinner domain.Alternative
		expectedTied   []domain.Alternative
		expectedError  error
	}{
		{
			name:           "tie broken by max",
			rows:           tied,
			policy:         domain.ByMax(),
			expectedWinner: 3,
			expectedTied:   []domain.Alternative{2, 3},
		},
		{
			name:           "tie broken by min",
			rows:           tied,
			policy:         domain.ByMin(),
			expectedWinner: 2,
			expectedTied:   []domain.Alternative{2, 3},
		},
		{
			name:           "tie broken by first agent",
			rows:           tied,
			policy:         domain.ByAgent(1),
			expectedWinner: 3,
			expectedTied:   []domain.Alternative{2, 3},
		},
		{
			name:           "tie broken by second agent",
			rows:           tied,
			policy:         domain.ByAgent(2),
			expectedWinner: 2,
			expectedTied:   []domain.Alternative{2, 3},
		},
		{
			name:          "tie with unknown agent",
			rows:          tied,
			policy:        domain.ByAgent(3),
			expectedError: domain.ErrInvalidAgent,
		},
		{
			name:           "uses raw values not ranks",
			rows:           [][]float64{{100, 0, 1}, {0, 2, 1}, {0, 2, 1}},
			policy:         domain.ByMin(),
			expectedWinner: 1,
			expectedTied:   []domain.Alternative{1},
		},
		{
			name:          "unset policy",
			rows:          tied,
			policy:        domain.TieBreak{},
			expectedError: domain.ErrInvalidTieBreak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := RangeVoting(testutils.MustTable(tt.rows), tt.policy)
			if tt.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedWinner, outcome.Winner)
			assert.Equal(t, tt.expectedTied, outcome.Tied)
			assert.Len(t, outcome.Scores, len(tt.rows[0]))
		})
	}
}

func TestRangeVoting_Sums(t *testing.T) {
	outcome, err := RangeVoting(testutils.MustTable([][]float64{{4, 5, 10}, {6, 10, 5}}), domain.ByMax())
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 15, 15}, outcome.Scores)
}

func TestRangeVoting_EmptyTable(t *testing.T) {
	_, err := RangeVoting(domain.ValuationTable{}, domain.ByMax())
	assert.ErrorIs(t, err, domain.ErrMalformedTable)
}
