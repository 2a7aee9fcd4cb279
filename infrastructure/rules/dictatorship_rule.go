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
	_ ports.Rule                 = (*DictatorshipRule)(nil)
	_ ports.ParameterUnmarshaler = (*DictatorshipRule)(nil)
)

// DictatorshipRule elects the favourite alternative of one agent.
type DictatorshipRule struct {
	name   string
	config DictatorshipConfig
}

// DictatorshipConfig defines the configuration parameters for a
// DictatorshipRule.
type DictatorshipConfig struct {
	// Agent is the 1-based index of the dictator.
	Agent int `yaml:"agent" json:"agent" validate:"required,min=1"`
}

// NewDictatorshipRule creates a new DictatorshipRule.
// Whether the agent exists is only known once a ballot is supplied.
func NewDictatorshipRule(name string, config DictatorshipConfig) (*DictatorshipRule, error) {
	if name == "" {
		return nil, ErrEmptyRuleName
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &DictatorshipRule{name: name, config: config}, nil
}

// Name returns the unique identifier for this rule instance.
func (dr *DictatorshipRule) Name() string { return dr.name }

// Type returns TypeDictatorship.
func (dr *DictatorshipRule) Type() string { return TypeDictatorship }

// Elect returns the dictator's top preference. An agent outside the
// ballot yields an error wrapping domain.ErrInvalidAgent.
func (dr *DictatorshipRule) Elect(ctx context.Context, ballot ports.Ballot) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}

	winner, err := voting.Dictatorship(ballot.Profile, domain.Agent(dr.config.Agent))
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{Winner: winner, Tied: []domain.Alternative{winner}}, nil
}

// Validate checks if the rule is properly configured.
func (dr *DictatorshipRule) Validate() error {
	if err := validateConfig(dr.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration parameters into the
// rule's configuration with strict validation.
func (dr *DictatorshipRule) UnmarshalParameters(params yaml.Node) error {
	var config DictatorshipConfig
	if err := decodeParameters(params, &config); err != nil {
		return err
	}
	dr.config = config
	return nil
}

// CreateDictatorshipRule is a factory function that creates a
// DictatorshipRule from a decoded parameter map.
func CreateDictatorshipRule(id string, params map[string]any) (*DictatorshipRule, error) {
	var config DictatorshipConfig
	switch agent := params["agent"].(type) {
	case int:
		config.Agent = agent
	case int64:
		config.Agent = int(agent)
	case nil:
		return nil, fmt.Errorf("dictatorship requires 'agent' parameter")
	default:
		return nil, fmt.Errorf("%w: agent must be an integer, got %T", domain.ErrInvalidAgent, agent)
	}
	return NewDictatorshipRule(id, config)
}
