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
	_ ports.Rule                 = (*RangeRule)(nil)
	_ ports.ParameterUnmarshaler = (*RangeRule)(nil)
)

// RangeRule implements range voting over the raw valuation table.
type RangeRule struct {
	name   string
	config TieBreakConfig
	policy domain.TieBreak
}

// NewRangeRule creates a new RangeRule with the specified configuration.
func NewRangeRule(name string, config TieBreakConfig) (*RangeRule, error) {
	if name == "" {
		return nil, ErrEmptyRuleName
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &RangeRule{name: name, config: config, policy: config.policy()}, nil
}

// Name returns the unique identifier for this rule instance.
func (rr *RangeRule) Name() string { return rr.name }

// Type returns TypeRange.
func (rr *RangeRule) Type() string { return TypeRange }

// Elect sums each alternative's valuations. It reads the table, not the
// profile, so the result does not depend on how equal valuations rank.
func (rr *RangeRule) Elect(ctx context.Context, ballot ports.Ballot) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}
	return voting.RangeVoting(ballot.Table, rr.policy)
}

// Validate checks if the rule is properly configured.
func (rr *RangeRule) Validate() error {
	if err := validateConfig(rr.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration parameters into the
// rule's configuration with strict validation. Unknown keys are rejected;
// an absent tie_break selects max, an explicit null is invalid.
func (rr *RangeRule) UnmarshalParameters(params yaml.Node) error {
	var config TieBreakConfig
	if !hasParameter(params, "tie_break") {
		config.TieBreak = domain.TieBreakTokenMax
	}
	if err := decodeParameters(params, &config); err != nil {
		return err
	}
	rr.config = config
	rr.policy = config.policy()
	return nil
}

// CreateRangeRule is a factory function that creates a RangeRule from a
// decoded parameter map.
func CreateRangeRule(id string, params map[string]any) (*RangeRule, error) {
	return NewRangeRule(id, TieBreakConfig{TieBreak: tieBreakParam(params, domain.TieBreakTokenMax)})
}
