// Package rules provides the voting rules that implement the ports.Rule
// interface for the go-ballot election engine.
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
)

// Supported rule types.
const (
	TypePlurality    = "plurality"
	TypeVeto         = "veto"
	TypeBorda        = "borda"
	TypeHarmonic     = "harmonic"
	TypeScoring      = "scoring"
	TypeSTV          = "stv"
	TypeRange        = "range"
	TypeDictatorship = "dictatorship"
)

// Common errors returned by rule constructors.
var (
	// ErrEmptyRuleName is returned when a rule is created without an id.
	ErrEmptyRuleName = errors.New("rule name cannot be empty")

	// ErrUnknownRuleType is returned for a type outside the supported set.
	ErrUnknownRuleType = errors.New("unknown rule type")

	// ErrMissingWeights is returned when a scoring rule has no weights.
	ErrMissingWeights = errors.New("scoring rule requires weights")

	// ErrUnexpectedWeights is returned when a fixed positional rule is
	// given weights.
	ErrUnexpectedWeights = errors.New("weights are only accepted by the scoring rule")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 with the tiebreak and finite tags
// registered by RegisterValidators.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		panic(fmt.Sprintf("rules: failed to register validators: %v", err))
	}
	return v
}

// RegisterValidators registers the rule-specific validation tags:
// "tiebreak" for tie-break tokens and "finite" for float fields.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("tiebreak", validateTieBreak); err != nil {
		return fmt.Errorf("failed to register tiebreak validator: %w", err)
	}
	if err := v.RegisterValidation("finite", validateFinite); err != nil {
		return fmt.Errorf("failed to register finite validator: %w", err)
	}
	return nil
}

func validateTieBreak(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := domain.ParseTieBreak(fl.Field().String())
	return err == nil
}

func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return false
	}
}

// TieBreakConfig is the parameter block shared by every rule that has to
// break ties.
type TieBreakConfig struct {
	// TieBreak is "max", "min" or an agent number.
	TieBreak string `yaml:"tie_break" json:"tie_break" validate:"required,tiebreak"`
}

// policy returns the parsed tie-break policy. The config must have been
// validated.
func (c TieBreakConfig) policy() domain.TieBreak {
	p, _ := domain.ParseTieBreak(c.TieBreak)
	return p
}

// tieBreakParam reads the tie_break entry of a decoded parameter map.
// An absent entry yields fallback. Strings and YAML integers are passed
// through as tokens; an explicit null or any other type yields "", which
// fails validation like every other invalid token.
func tieBreakParam(params map[string]any, fallback string) string {
	v, ok := params["tie_break"]
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case string:
		return t
	case int, int64, uint64:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// floatsParam reads a list of numbers from a decoded parameter map.
func floatsParam(params map[string]any, key string) ([]float64, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch list := raw.(type) {
	case []float64:
		return list, nil
	case []any:
		out := make([]float64, len(list))
		for i, item := range list {
			switch n := item.(type) {
			case int:
				out[i] = float64(n)
			case int64:
				out[i] = float64(n)
			case float64:
				out[i] = n
			default:
				return nil, fmt.Errorf("%s[%d] must be a number, got %T", key, i, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a list of numbers, got %T", key, raw)
	}
}

// hasParameter reports whether the parameter mapping names key, even with
// a null value.
func hasParameter(params yaml.Node, key string) bool {
	if params.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(params.Content); i += 2 {
		if params.Content[i].Value == key {
			return true
		}
	}
	return false
}

// decodeParameters strictly decodes a YAML parameter node into out and
// validates it.
func decodeParameters(params yaml.Node, out any) error {
	if params.Kind == 0 {
		return validateConfig(out)
	}

	// Re-encode so the node can go through a strict decoder.
	data, err := yaml.Marshal(&params)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	if err := strictUnmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	return validateConfig(out)
}

func validateConfig(config any) error {
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	return nil
}

// strictUnmarshal decodes YAML and rejects unknown fields so that a typo in
// a parameter name is not silently ignored.
func strictUnmarshal(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}
