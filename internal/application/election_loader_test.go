package application

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ballot/internal/domain"
)

// councilYAML describes a three agent election whose columns sum to
// [10, 15, 15].
const councilYAML = `
version: "1.0.0"
metadata:
  name: council
  description: "Three agents, three alternatives"
  tags: [example]
valuations:
  - [1, 5, 4]
  - [2, 5, 8]
  - [7, 5, 3]
rules:
  - id: borda
    type: borda
    parameters:
      tie_break: max
  - id: range-min
    type: Range
    parameters:
      tie_break: min
  - id: stv
    type: stv
  - id: custom
    type: scoring
    parameters:
      tie_break: 2
      weights: [0, 1, 4]
  - id: dictator
    type: dictatorship
    parameters:
      agent: 1
`

func newTestLoader(t *testing.T) *ElectionLoader {
	t.Helper()
	loader, err := NewElectionLoader(NewDefaultRuleRegistry())
	require.NoError(t, err)
	return loader
}

func TestElectionLoader_LoadFromReader(t *testing.T) {
	loader := newTestLoader(t)

	election, err := loader.LoadFromReader(context.Background(), strings.NewReader(councilYAML))
	require.NoError(t, err)

	assert.Equal(t, "council", election.Name)
	assert.Equal(t, 3, election.Ballot.Table.NumAgents())
	assert.Equal(t, 3, election.Ballot.Table.NumAlternatives())

	wantRankings := [][]domain.Alternative{{2, 3, 1}, {3, 2, 1}, {1, 2, 3}}
	assert.Equal(t, wantRankings, election.Ballot.Profile.Rankings())

	require.Len(t, election.Rules, 5)
	names := make([]string, 0, len(election.Rules))
	types := make([]string, 0, len(election.Rules))
	for _, rule := range election.Rules {
		names = append(names, rule.Name())
		types = append(types, rule.Type())
	}
	assert.Equal(t, []string{"borda", "range-min", "stv", "custom", "dictator"}, names)
	assert.Equal(t, []string{"borda", "range", "stv", "scoring", "dictatorship"}, types)
}

func TestElectionLoader_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown top level field",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2]]
rules: [{id: a, type: borda}]
ballots: []
`,
			wantErr: "field ballots not found",
		},
		{
			name: "bad version",
			yaml: `
version: "one"
metadata: {name: x}
valuations: [[1, 2]]
rules: [{id: a, type: borda}]
`,
			wantErr: "semver",
		},
		{
			name: "unknown rule type",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2]]
rules: [{id: a, type: condorcet}]
`,
			wantErr: "ruletype",
		},
		{
			name: "no rules",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2]]
rules: []
`,
			wantErr: "Rules",
		},
		{
			name: "table missing",
			yaml: `
version: "1.0.0"
metadata: {name: x}
rules: [{id: a, type: borda}]
`,
			wantErr: "either valuations or source is required",
		},
		{
			name: "inline table and source",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2]]
source: {path: votes.csv}
rules: [{id: a, type: borda}]
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "ragged table",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2], [3]]
rules: [{id: a, type: borda}]
`,
			wantErr: "row 2 has 1 valuations, want 2",
		},
		{
			name: "duplicate rule ids",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2]]
rules: [{id: a, type: borda}, {id: a, type: veto}]
`,
			wantErr: `duplicate rule ID "a"`,
		},
		{
			name: "invalid tie break token",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2]]
rules: [{id: a, type: borda, parameters: {tie_break: random}}]
`,
			wantErr: "invalid tie-break option",
		},
		{
			name: "scoring without weights",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2]]
rules: [{id: a, type: scoring}]
`,
			wantErr: "scoring requires 'weights' parameter",
		},
		{
			name: "borda with weights",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2]]
rules: [{id: a, type: borda, parameters: {weights: [1, 0]}}]
`,
			wantErr: `unknown parameter "weights" for borda`,
		},
		{
			name: "dictatorship without agent",
			yaml: `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2]]
rules: [{id: a, type: dictatorship}]
`,
			wantErr: "dictatorship requires 'agent' parameter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newTestLoader(t)

			_, err := loader.LoadFromReader(context.Background(), strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestElectionLoader_RaggedTableIsMalformed(t *testing.T) {
	loader := newTestLoader(t)
	yml := `
version: "1.0.0"
metadata: {name: x}
valuations: [[1, 2], [3]]
rules: [{id: a, type: borda}]
`
	_, err := loader.LoadFromReader(context.Background(), strings.NewReader(yml))
	require.ErrorIs(t, err, domain.ErrMalformedTable)
}

func TestElectionLoader_LoadFromFileWithCSVSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "votes.csv"),
		[]byte("a1,a2,a3\n1,5,4\n2,5,8\n7,5,3\n"), 0o600))

	config := `
version: "1.0.0"
metadata: {name: from-csv}
source:
  path: votes.csv
  format: csv
  header: true
rules:
  - id: range
    type: range
    parameters: {tie_break: max}
`
	path := filepath.Join(dir, "election.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

	loader := newTestLoader(t)
	election, err := loader.LoadFromFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "from-csv", election.Name)
	assert.Equal(t, [][]float64{{1, 5, 4}, {2, 5, 8}, {7, 5, 3}}, election.Ballot.Table.Rows())
}

func TestElectionLoader_LoadFromFileErrors(t *testing.T) {
	loader := newTestLoader(t)

	_, err := loader.LoadFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")

	dir := t.TempDir()
	path := filepath.Join(dir, "election.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1.0.0"
metadata: {name: x}
source: {path: absent.csv}
rules: [{id: a, type: borda}]
`), 0o600))

	_, err = loader.LoadFromFile(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open valuation source")
}

func TestElectionLoader_Cache(t *testing.T) {
	loader := newTestLoader(t)
	ctx := context.Background()

	first, err := loader.LoadFromReader(ctx, strings.NewReader(councilYAML))
	require.NoError(t, err)

	// Reformatting does not change the normalized config.
	reformatted := strings.ReplaceAll(councilYAML, "tie_break: max", "tie_break:   max")
	second, err := loader.LoadFromReader(ctx, strings.NewReader(reformatted))
	require.NoError(t, err)
	assert.Same(t, first, second, "semantically identical configs should share a cache entry")

	loader.ClearCache()
	third, err := loader.LoadFromReader(ctx, strings.NewReader(councilYAML))
	require.NoError(t, err)
	assert.NotSame(t, first, third, "ClearCache should force recompilation")
}

func TestElectionLoader_ConcurrentLoads(t *testing.T) {
	loader := newTestLoader(t)
	ctx := context.Background()

	const workers = 8
	results := make([]*Election, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			election, err := loader.LoadFromReader(ctx, strings.NewReader(councilYAML))
			assert.NoError(t, err)
			results[i] = election
		}()
	}
	wg.Wait()

	for _, election := range results[1:] {
		assert.Same(t, results[0], election)
	}
}

func TestElectionLoader_RejectsMisspelledParameters(t *testing.T) {
	tests := []struct {
		name    string
		rule    string
		wantErr string
		target  error
	}{
		{
			name:    "misspelled tie_break on range",
			rule:    "{id: r, type: range, parameters: {tie_breaker: min}}",
			wantErr: `unknown parameter "tie_breaker" for range`,
		},
		{
			name:    "misspelled agent on dictatorship",
			rule:    "{id: d, type: dictatorship, parameters: {agent: 1, agnet: 2}}",
			wantErr: `unknown parameter "agnet" for dictatorship`,
		},
		{
			name:    "null tie_break",
			rule:    "{id: s, type: stv, parameters: {tie_break: ~}}",
			wantErr: "tie_break must be",
			target:  domain.ErrInvalidTieBreak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yml := `
version: "1.0.0"
metadata: {name: typo}
valuations: [[1, 5, 4], [2, 5, 8], [7, 5, 3]]
rules: [` + tt.rule + `]
`
			_, err := newTestLoader(t).LoadFromReader(context.Background(), strings.NewReader(yml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestElectionLoader_CanceledCallerDoesNotPoisonLoads(t *testing.T) {
	loader := newTestLoader(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.LoadFromReader(ctx, strings.NewReader(councilYAML))
	require.ErrorIs(t, err, context.Canceled)

	election, err := loader.LoadFromReader(context.Background(), strings.NewReader(councilYAML))
	require.NoError(t, err)
	assert.Len(t, election.Rules, 5)
}
