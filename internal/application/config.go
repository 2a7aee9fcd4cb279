package application

import (
	"gopkg.in/yaml.v3"
)

// ElectionConfig defines the complete specification of one election and
// serves as the primary configuration entry point for the system.
// The valuation table is given either inline through Valuations or by
// reference through Source, never both.
type ElectionConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across system updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata contains descriptive information about the election.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Valuations is the inline valuation table, one row per agent and one
	// column per alternative.
	Valuations [][]float64 `yaml:"valuations,omitempty" validate:"omitempty,min=1,dive,min=1,dive,finite"`
	// Source references a file holding the valuation table.
	Source *SourceConfig `yaml:"source,omitempty" validate:"omitempty"`
	// Rules lists the voting rules to apply to the table.
	Rules []RuleConfig `yaml:"rules" validate:"required,min=1,dive"`
}

// Metadata provides descriptive information about an election.
type Metadata struct {
	// Name is the human-readable identifier for this election.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description provides a detailed explanation of the election.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are categorical labels for filtering and grouping elections.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
	// Labels are arbitrary key-value pairs for integration with external
	// systems.
	Labels map[string]string `yaml:"labels" validate:"max=50"`
}

// SourceConfig references an external valuation table.
type SourceConfig struct {
	// Path is the location of the file. Relative paths are resolved
	// against the directory of the election file when loaded from disk.
	Path string `yaml:"path" validate:"required"`
	// Format is the file format. Only csv is supported.
	Format string `yaml:"format" validate:"omitempty,oneof=csv"`
	// Header skips the first line of the file when true.
	Header bool `yaml:"header"`
}

// RuleConfig defines one voting rule of the election.
type RuleConfig struct {
	// ID is the unique identifier for this rule within the election.
	ID string `yaml:"id" validate:"required,min=1,max=100,printascii"`
	// Type selects the rule implementation. Matching is case-insensitive.
	Type string `yaml:"type" validate:"required,ruletype"`
	// Parameters contains type-specific configuration as flexible YAML
	// that will be validated according to the rule type requirements.
	Parameters yaml.Node `yaml:"parameters,omitempty"`
}
