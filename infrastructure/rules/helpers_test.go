package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/ports"
	"github.com/ahrav/go-ballot/internal/testutils"
	"github.com/ahrav/go-ballot/internal/voting"
)

// newBallot builds a ballot from raw valuations.
func newBallot(t *testing.T, rows [][]float64) ports.Ballot {
	t.Helper()

	table := testutils.MustTable(rows)
	profile, err := voting.BuildProfile(table)
	require.NoError(t, err)
	return ports.Ballot{Table: table, Profile: profile}
}

// yamlParams parses a YAML snippet into the node handed to
// UnmarshalParameters.
func yamlParams(t *testing.T, src string) yaml.Node {
	t.Helper()

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	require.NotEmpty(t, doc.Content)
	return *doc.Content[0]
}
