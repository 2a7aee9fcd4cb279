// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
)

// Ballot is the read-only input every rule of one election receives.
// Profile is derived from Table once per election.
type Ballot struct {
	Table   domain.ValuationTable
	Profile domain.Profile
}

// Rule represents one configured voting rule.
// Rules must not modify the ballot and must be safe to run concurrently
// with other rules reading the same ballot.
type Rule interface {
	// Name returns the configured identifier of this rule.
	Name() string

	// Type returns the rule kind, such as "borda" or "stv".
	Type() string

	// Elect applies the rule to the ballot and returns its outcome.
	// Invalid agents, tie-break options and score vectors are reported as
	// errors wrapping the matching domain sentinel.
	//
	// Example:
	//
	//	outcome, err := rule.Elect(ctx, ballot)
	//	if err != nil {
	//	    return fmt.Errorf("rule %s failed: %w", rule.Name(), err)
	//	}
	Elect(ctx context.Context, ballot Ballot) (domain.Outcome, error)

	// Validate checks if the rule is properly configured.
	// Return nil if validation passes, or an error describing what is invalid.
	Validate() error
}

// ParameterUnmarshaler is implemented by rules that decode their YAML
// parameters into a typed configuration. Implementations must reject
// unknown keys.
type ParameterUnmarshaler interface {
	UnmarshalParameters(params yaml.Node) error
}

// RuleFactory creates a rule from its identifier and decoded parameters.
type RuleFactory func(id string, params map[string]any) (Rule, error)

// RuleRegistry resolves rule types to rule instances.
type RuleRegistry interface {
	// CreateRule builds a rule of the given type.
	CreateRule(ruleType, id string, params map[string]any) (Rule, error)

	// RegisterRuleFactory adds or replaces the factory for a rule type.
	RegisterRuleFactory(ruleType string, factory RuleFactory) error

	// SupportedTypes lists the registered rule types in sorted order.
	SupportedTypes() []string
}
