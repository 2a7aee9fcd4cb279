package application

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ahrav/go-ballot/infrastructure/rules"
	"github.com/ahrav/go-ballot/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.RuleRegistry = (*DefaultRuleRegistry)(nil)

// DefaultRuleRegistry implements the RuleRegistry interface providing
// a factory for creating voting rules based on type and parameters.
// It supports dynamic registration of rule factories.
type DefaultRuleRegistry struct {
	// factories maps normalized rule types to their factory functions.
	factories map[string]ports.RuleFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewDefaultRuleRegistry creates a new rule registry with every built-in
// rule type pre-registered.
func NewDefaultRuleRegistry() *DefaultRuleRegistry {
	registry := &DefaultRuleRegistry{
		factories: make(map[string]ports.RuleFactory),
	}

	registry.registerBuiltinFactories()

	return registry
}

// registerBuiltinFactories registers the standard rule types: the
// positional family, stv, range and dictatorship.
func (r *DefaultRuleRegistry) registerBuiltinFactories() {
	for _, kind := range []string{
		rules.TypePlurality,
		rules.TypeVeto,
		rules.TypeBorda,
		rules.TypeHarmonic,
		rules.TypeScoring,
	} {
		create := rules.CreatePositionalRule(kind)
		r.factories[kind] = func(id string, params map[string]any) (ports.Rule, error) {
			rule, err := create(id, params)
			if err != nil {
				return nil, err
			}
			return rule, nil
		}
	}

	r.factories[rules.TypeSTV] = func(id string, params map[string]any) (ports.Rule, error) {
		rule, err := rules.CreateSTVRule(id, params)
		if err != nil {
			return nil, err
		}
		return rule, nil
	}

	r.factories[rules.TypeRange] = func(id string, params map[string]any) (ports.Rule, error) {
		rule, err := rules.CreateRangeRule(id, params)
		if err != nil {
			return nil, err
		}
		return rule, nil
	}

	r.factories[rules.TypeDictatorship] = func(id string, params map[string]any) (ports.Rule, error) {
		rule, err := rules.CreateDictatorshipRule(id, params)
		if err != nil {
			return nil, err
		}
		return rule, nil
	}
}

// CreateRule creates a new rule instance based on the provided type,
// identifier and parameters. The type is matched case-insensitively.
func (r *DefaultRuleRegistry) CreateRule(
	ruleType string,
	id string,
	params map[string]any,
) (ports.Rule, error) {
	kind := NormalizeRuleType(ruleType)

	r.mu.RLock()
	factory, exists := r.factories[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", rules.ErrUnknownRuleType, ruleType)
	}

	if id == "" {
		return nil, fmt.Errorf("rule ID cannot be empty")
	}

	if params == nil {
		params = make(map[string]any)
	}

	rule, err := factory(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule %s of type %s: %w", id, kind, err)
	}

	return rule, nil
}

// RegisterRuleFactory registers a new factory function for a specific rule type.
// This allows extending the registry with custom rules at runtime.
func (r *DefaultRuleRegistry) RegisterRuleFactory(
	ruleType string,
	factory ports.RuleFactory,
) error {
	kind := NormalizeRuleType(ruleType)
	if kind == "" {
		return fmt.Errorf("rule type cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[kind] = factory
	return nil
}

// SupportedTypes returns the registered rule types in sorted order.
func (r *DefaultRuleRegistry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		types = append(types, kind)
	}
	slices.Sort(types)
	return types
}
