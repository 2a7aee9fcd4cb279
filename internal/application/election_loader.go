package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
	"github.com/ahrav/go-ballot/internal/voting"
)

// Election is a compiled election: a validated table, the profile derived
// from it, and the rules to apply. Elections are immutable and may be
// shared between callers.
type Election struct {
	// Name is the election name from the configuration metadata.
	Name string
	// Ballot holds the valuation table and its preference profile.
	Ballot ports.Ballot
	// Rules are the configured rules in declaration order.
	Rules []ports.Rule
}

// ElectionLoader provides YAML configuration parsing, validation, and
// caching for elections, transforming declarative election files into
// ready-to-run Election values.
type ElectionLoader struct {
	// validator performs struct field validation with the custom tags
	// registered by registerCustomValidators.
	validator *validator.Validate
	// registry creates rules from their type and parameters.
	registry ports.RuleRegistry
	// cache stores compiled elections indexed by SHA256 hash of the
	// normalized config and its resolved table.
	cache map[string]*Election
	// cacheMu provides thread-safe access to the cache map.
	cacheMu sync.RWMutex
	// sf prevents duplicate compilation when multiple goroutines request
	// the same election simultaneously.
	sf singleflight.Group
}

// NewElectionLoader creates a new election loader with validation
// capabilities and an empty cache.
// NewElectionLoader returns an error if validator registration fails.
func NewElectionLoader(registry ports.RuleRegistry) (*ElectionLoader, error) {
	v := validator.New()

	if err := registerCustomValidators(v, registry); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &ElectionLoader{
		validator: v,
		registry:  registry,
		cache:     make(map[string]*Election),
	}, nil
}

// LoadFromFile loads and compiles an election from a YAML file. A CSV
// source with a relative path is resolved against the file's directory.
func (el *ElectionLoader) LoadFromFile(ctx context.Context, path string) (*Election, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return el.load(ctx, data, filepath.Dir(cleanPath))
}

// LoadFromReader loads and compiles an election from an io.Reader.
// A CSV source with a relative path is resolved against the working
// directory.
func (el *ElectionLoader) LoadFromReader(ctx context.Context, r io.Reader) (*Election, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return el.load(ctx, data, "")
}

// load parses and validates the configuration, resolves the valuation
// table, and compiles the election once per distinct config and table.
// WARNING: The returned election may be a cached instance shared with
// other callers.
func (el *ElectionLoader) load(ctx context.Context, data []byte, baseDir string) (*Election, error) {
	config, err := el.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := el.validateConfig(config); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	rows := config.Valuations
	if config.Source != nil {
		if rows, err = readSource(config.Source, baseDir); err != nil {
			return nil, err
		}
	}

	hash, err := el.calculateHash(config, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The flight is shared by every caller loading the same election, so
	// it does not run under any single caller's context.
	ch := el.sf.DoChan(hash, func() (any, error) {
		if election, ok := el.getCachedElection(hash); ok {
			return election, nil
		}

		election, err := el.buildElection(config, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to build election: %w", err)
		}

		el.cacheElection(hash, election)
		return election, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Election), nil
	}
}

// parseYAML unmarshals YAML with strict decoding so that unknown fields
// are reported instead of silently ignored.
func (el *ElectionLoader) parseYAML(data []byte) (*ElectionConfig, error) {
	var config ElectionConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig performs struct tag validation followed by the semantic
// checks that tags cannot express.
func (el *ElectionLoader) validateConfig(config *ElectionConfig) error {
	if err := el.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if err := el.validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}

	return nil
}

// validateSemantics requires exactly one table source, unique rule ids,
// and valid parameters for every built-in rule.
func (el *ElectionLoader) validateSemantics(config *ElectionConfig) error {
	hasInline := len(config.Valuations) > 0
	hasSource := config.Source != nil
	switch {
	case hasInline && hasSource:
		return fmt.Errorf("valuations and source are mutually exclusive")
	case !hasInline && !hasSource:
		return fmt.Errorf("%w: either valuations or source is required", domain.ErrMalformedTable)
	}

	ruleIDs := make(map[string]struct{}, len(config.Rules))
	for _, rule := range config.Rules {
		if _, exists := ruleIDs[rule.ID]; exists {
			return fmt.Errorf("duplicate rule ID %q", rule.ID)
		}
		ruleIDs[rule.ID] = struct{}{}

		if !IsBuiltinRuleType(rule.Type) {
			continue
		}
		if err := ValidateRuleParameters(rule.Type, rule.Parameters); err != nil {
			return fmt.Errorf("rule %s parameter validation failed: %w", rule.ID, err)
		}
	}

	return nil
}

// buildElection validates the table, derives the preference profile, and
// creates every rule through the registry.
func (el *ElectionLoader) buildElection(config *ElectionConfig, rows [][]float64) (*Election, error) {
	table, err := domain.NewValuationTable(rows)
	if err != nil {
		return nil, err
	}

	profile, err := voting.BuildProfile(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build preference profile: %w", err)
	}

	rules := make([]ports.Rule, 0, len(config.Rules))
	for _, ruleConfig := range config.Rules {
		rule, err := el.createRule(ruleConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create rule %s: %w", ruleConfig.ID, err)
		}
		rules = append(rules, rule)
	}

	return &Election{
		Name:   config.Metadata.Name,
		Ballot: ports.Ballot{Table: table, Profile: profile},
		Rules:  rules,
	}, nil
}

// createRule decodes the rule's YAML parameters into a map and delegates
// to the registry. Rules that decode their own parameters then receive
// the raw node, so unknown or mistyped keys are rejected instead of
// silently falling back to defaults.
func (el *ElectionLoader) createRule(config RuleConfig) (ports.Rule, error) {
	params := map[string]any{}
	if config.Parameters.Kind != 0 {
		if err := config.Parameters.Decode(&params); err != nil {
			return nil, fmt.Errorf("failed to decode parameters: %w", err)
		}
	}

	rule, err := el.registry.CreateRule(config.Type, config.ID, params)
	if err != nil {
		return nil, err
	}

	if unmarshaler, ok := rule.(ports.ParameterUnmarshaler); ok && config.Parameters.Kind != 0 {
		if err := unmarshaler.UnmarshalParameters(config.Parameters); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
	}

	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("rule validation failed: %w", err)
	}
	return rule, nil
}

// calculateHash computes the SHA256 hash of the normalized config and its
// resolved table, so that semantically identical elections share a cache
// entry regardless of formatting and an edited source file does not.
func (el *ElectionLoader) calculateHash(config *ElectionConfig, rows [][]float64) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	normalized := struct {
		Config *ElectionConfig `yaml:"config"`
		Rows   [][]float64     `yaml:"rows"`
	}{Config: config, Rows: rows}

	if err := encoder.Encode(normalized); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

// getCachedElection returns a previously compiled election.
// getCachedElection is safe for concurrent use.
func (el *ElectionLoader) getCachedElection(hash string) (*Election, bool) {
	el.cacheMu.RLock()
	defer el.cacheMu.RUnlock()

	election, ok := el.cache[hash]
	return election, ok
}

// cacheElection stores a compiled election under its hash.
// cacheElection is safe for concurrent use.
func (el *ElectionLoader) cacheElection(hash string, election *Election) {
	el.cacheMu.Lock()
	defer el.cacheMu.Unlock()

	el.cache[hash] = election
}

// ClearCache removes all cached elections, forcing subsequent loads to
// recompile from source.
func (el *ElectionLoader) ClearCache() {
	el.cacheMu.Lock()
	defer el.cacheMu.Unlock()

	el.cache = make(map[string]*Election)
}
