package rules

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
	"github.com/ahrav/go-ballot/internal/voting"
)

var (
	_ ports.Rule                 = (*STVRule)(nil)
	_ ports.ParameterUnmarshaler = (*STVRule)(nil)
)

// STVRule implements single transferable vote elimination.
// The rule works on its own copy of the profile for every run and is safe
// for concurrent execution.
type STVRule struct {
	name   string
	config TieBreakConfig
	policy domain.TieBreak
}

// NewSTVRule creates a new STVRule with the specified configuration.
func NewSTVRule(name string, config TieBreakConfig) (*STVRule, error) {
	if name == "" {
		return nil, ErrEmptyRuleName
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &STVRule{name: name, config: config, policy: config.policy()}, nil
}

// Name returns the unique identifier for this rule instance.
func (sr *STVRule) Name() string { return sr.name }

// Type returns TypeSTV.
func (sr *STVRule) Type() string { return TypeSTV }

// Elect runs elimination rounds over the ballot's profile.
func (sr *STVRule) Elect(ctx context.Context, ballot ports.Ballot) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}
	return voting.STV(ballot.Profile, sr.policy)
}

// Validate checks if the rule is properly configured.
func (sr *STVRule) Validate() error {
	if err := validateConfig(sr.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration parameters into the
// rule's configuration with strict validation. Unknown keys are rejected;
// an absent tie_break selects max, an explicit null is invalid.
func (sr *STVRule) UnmarshalParameters(params yaml.Node) error {
	var config TieBreakConfig
	if !hasParameter(params, "tie_break") {
		config.TieBreak = domain.TieBreakTokenMax
	}
	if err := decodeParameters(params, &config); err != nil {
		return err
	}
	sr.config = config
	sr.policy = config.policy()
	return nil
}

// CreateSTVRule is a factory function that creates an STVRule from a
// decoded parameter map.
func CreateSTVRule(id string, params map[string]any) (*STVRule, error) {
	return NewSTVRule(id, TieBreakConfig{TieBreak: tieBreakParam(params, domain.TieBreakTokenMax)})
}
