package application

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/infrastructure/rules"
	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// builtinRuleTypes lists the rule types the default registry knows.
var builtinRuleTypes = []string{
	rules.TypeBorda,
	rules.TypeDictatorship,
	rules.TypeHarmonic,
	rules.TypePlurality,
	rules.TypeRange,
	rules.TypeScoring,
	rules.TypeSTV,
	rules.TypeVeto,
}

// ruleParameterKeys lists the parameters each built-in rule type accepts.
var ruleParameterKeys = map[string][]string{
	rules.TypePlurality:    {"tie_break"},
	rules.TypeVeto:         {"tie_break"},
	rules.TypeBorda:        {"tie_break"},
	rules.TypeHarmonic:     {"tie_break"},
	rules.TypeScoring:      {"tie_break", "weights"},
	rules.TypeSTV:          {"tie_break"},
	rules.TypeRange:        {"tie_break"},
	rules.TypeDictatorship: {"agent"},
}

// NormalizeRuleType folds a configured rule type to its canonical form so
// that "Borda", "BORDA" and "borda" select the same rule.
func NormalizeRuleType(ruleType string) string {
	return cases.Fold().String(strings.TrimSpace(ruleType))
}

// registerCustomValidators registers domain-specific validation functions
// with the validator instance: semantic versions, rule types known to the
// registry, and the rule parameter tags.
// registerCustomValidators returns an error if any validator registration fails.
func registerCustomValidators(v *validator.Validate, registry ports.RuleRegistry) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}

	validateRuleType := func(fl validator.FieldLevel) bool {
		return slices.Contains(registry.SupportedTypes(), NormalizeRuleType(fl.Field().String()))
	}
	if err := v.RegisterValidation("ruletype", validateRuleType); err != nil {
		return fmt.Errorf("failed to register ruletype validator: %w", err)
	}

	if err := rules.RegisterValidators(v); err != nil {
		return fmt.Errorf("failed to register rule validators: %w", err)
	}

	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// IsBuiltinRuleType reports whether ruleType names a rule shipped with
// the engine. Only built-in rules get their parameters checked up front.
func IsBuiltinRuleType(ruleType string) bool {
	return slices.Contains(builtinRuleTypes, NormalizeRuleType(ruleType))
}

// ValidateRuleParameters validates the parameters of a rule before the
// rule is built, so configuration mistakes surface at load time together
// with the offending rule id.
// ValidateRuleParameters returns an error if parameter decoding fails
// or if any validation rule is violated.
func ValidateRuleParameters(ruleType string, params yaml.Node) error {
	paramMap := map[string]any{}
	if params.Kind != 0 {
		if err := params.Decode(&paramMap); err != nil {
			return fmt.Errorf("failed to decode parameters: %w", err)
		}
	}

	kind := NormalizeRuleType(ruleType)
	allowed, ok := ruleParameterKeys[kind]
	if !ok {
		return fmt.Errorf("unknown rule type: %s", ruleType)
	}
	for key := range paramMap {
		if !slices.Contains(allowed, key) {
			return fmt.Errorf("unknown parameter %q for %s, accepted: %v", key, kind, allowed)
		}
	}

	switch {
	case rules.IsPositional(kind):
		return validatePositionalParams(kind, paramMap)
	case kind == rules.TypeDictatorship:
		return validateDictatorshipParams(paramMap)
	default:
		return validateTieBreakParam(paramMap)
	}
}

// validateTieBreakParam checks the optional tie_break entry.
func validateTieBreakParam(params map[string]any) error {
	raw, ok := params["tie_break"]
	if !ok {
		return nil
	}

	var token string
	switch v := raw.(type) {
	case string:
		token = v
	case int:
		token = fmt.Sprint(v)
	default:
		return fmt.Errorf("%w: tie_break must be %q, %q or an agent number, got %v",
			domain.ErrInvalidTieBreak, domain.TieBreakTokenMax, domain.TieBreakTokenMin, raw)
	}

	if _, err := domain.ParseTieBreak(token); err != nil {
		return err
	}
	return nil
}

// validatePositionalParams checks tie_break and the weights of the
// scoring rule. The fixed positional rules never get here with weights
// because the key is not in their accepted set.
func validatePositionalParams(kind string, params map[string]any) error {
	if err := validateTieBreakParam(params); err != nil {
		return err
	}

	weights, hasWeights := params["weights"]
	switch {
	case kind == rules.TypeScoring && !hasWeights:
		return fmt.Errorf("scoring requires 'weights' parameter")
	case !hasWeights:
		return nil
	}

	list, ok := weights.([]any)
	if !ok || len(list) == 0 {
		return fmt.Errorf("weights must be a non-empty list of numbers")
	}
	for i, w := range list {
		switch w.(type) {
		case int, float64:
		default:
			return fmt.Errorf("weights[%d] must be a number, got %v", i, w)
		}
	}
	return nil
}

// validateDictatorshipParams checks the required agent entry.
func validateDictatorshipParams(params map[string]any) error {
	raw, ok := params["agent"]
	if !ok {
		return fmt.Errorf("dictatorship requires 'agent' parameter")
	}
	agent, ok := raw.(int)
	if !ok || agent < 1 {
		return fmt.Errorf("%w: agent must be a positive integer, got %v", domain.ErrInvalidAgent, raw)
	}
	return nil
}
