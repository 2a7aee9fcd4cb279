package rules

import (
	"context"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
	"github.com/ahrav/go-ballot/internal/voting"
)

var (
	_ ports.Rule                 = (*PositionalRule)(nil)
	_ ports.ParameterUnmarshaler = (*PositionalRule)(nil)
)

// PositionalRule implements the positional scoring family: plurality,
// veto, Borda, harmonic and the generic scoring rule with caller-supplied
// weights. The fixed rules derive their score vector from the number of
// alternatives in the ballot.
// The rule is stateless and safe for concurrent execution.
type PositionalRule struct {
	// name is the unique identifier for this rule instance.
	name string
	// kind is one of the positional rule types.
	kind string
	// config contains the validated configuration parameters.
	config PositionalConfig
	// policy is the tie-break policy parsed from config.
	policy domain.TieBreak
}

// PositionalConfig defines the configuration parameters for a PositionalRule.
type PositionalConfig struct {
	// TieBreak is "max", "min" or an agent number.
	TieBreak string `yaml:"tie_break" json:"tie_break" validate:"required,tiebreak"`

	// Weights is the score vector of the scoring rule, one weight per
	// alternative in any order. Fixed rules must leave it empty.
	Weights []float64 `yaml:"weights,omitempty" json:"weights,omitempty" validate:"omitempty,dive,finite"`
}

// IsPositional reports whether ruleType belongs to the positional family.
func IsPositional(ruleType string) bool {
	switch ruleType {
	case TypePlurality, TypeVeto, TypeBorda, TypeHarmonic, TypeScoring:
		return true
	default:
		return false
	}
}

// NewPositionalRule creates a positional rule of the given kind.
// Returns an error if the kind is not positional or the configuration is
// invalid for it.
func NewPositionalRule(name, kind string, config PositionalConfig) (*PositionalRule, error) {
	if name == "" {
		return nil, ErrEmptyRuleName
	}
	if !IsPositional(kind) {
		return nil, fmt.Errorf("%w: %q is not a positional rule", ErrUnknownRuleType, kind)
	}

	rule := &PositionalRule{name: name, kind: kind}
	if err := rule.configure(config); err != nil {
		return nil, err
	}
	return rule, nil
}

func (pr *PositionalRule) configure(config PositionalConfig) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	switch {
	case pr.kind == TypeScoring && len(config.Weights) == 0:
		return ErrMissingWeights
	case pr.kind != TypeScoring && len(config.Weights) > 0:
		return fmt.Errorf("%w: rule type %s", ErrUnexpectedWeights, pr.kind)
	}

	pr.config = PositionalConfig{TieBreak: config.TieBreak, Weights: slices.Clone(config.Weights)}
	pr.policy = TieBreakConfig{TieBreak: config.TieBreak}.policy()
	return nil
}

// Name returns the unique identifier for this rule instance.
func (pr *PositionalRule) Name() string { return pr.name }

// Type returns the positional kind of this rule.
func (pr *PositionalRule) Type() string { return pr.kind }

// Elect scores every alternative with the rule's vector and returns the
// highest total, breaking ties with the configured policy.
func (pr *PositionalRule) Elect(ctx context.Context, ballot ports.Ballot) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}

	m := ballot.Profile.NumAlternatives()
	var weights []float64
	switch pr.kind {
	case TypePlurality:
		weights = voting.PluralityVector(m)
	case TypeVeto:
		weights = voting.VetoVector(m)
	case TypeBorda:
		weights = voting.BordaVector(m)
	case TypeHarmonic:
		weights = voting.HarmonicVector(m)
	default:
		weights = pr.config.Weights
	}

	return voting.ScoringRule(ballot.Profile, weights, pr.policy)
}

// Validate checks if the rule is properly configured.
func (pr *PositionalRule) Validate() error {
	if err := validateConfig(pr.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration parameters into the
// rule's configuration with strict validation. Unknown keys are rejected;
// an absent tie_break selects max, an explicit null is invalid.
func (pr *PositionalRule) UnmarshalParameters(params yaml.Node) error {
	var config PositionalConfig
	if !hasParameter(params, "tie_break") {
		config.TieBreak = domain.TieBreakTokenMax
	}
	if err := decodeParameters(params, &config); err != nil {
		return err
	}
	return pr.configure(config)
}

// CreatePositionalRule returns a factory for the given positional kind that
// builds rules from a decoded parameter map, following the RuleFactory
// pattern.
func CreatePositionalRule(kind string) func(id string, params map[string]any) (*PositionalRule, error) {
	return func(id string, params map[string]any) (*PositionalRule, error) {
		weights, err := floatsParam(params, "weights")
		if err != nil {
			return nil, err
		}

		return NewPositionalRule(id, kind, PositionalConfig{
			TieBreak: tieBreakParam(params, domain.TieBreakTokenMax),
			Weights:  weights,
		})
	}
}
