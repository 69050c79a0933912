package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/enginebridge/internal/engine"
)

// DefaultTimeout bounds a scenario that does not set its own timeout.
const DefaultTimeout = 5 * time.Second

// Scenario defines a scripted conversation with an engine.
type Scenario struct {
	// Name uniquely identifies this scenario (and its golden file).
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Engine is the registered engine name ("echo", "uci", "lua").
	Engine string `yaml:"engine"`

	// Settings are passed to the engine factory.
	Settings *SettingsSpec `yaml:"settings,omitempty"`

	// Commands are submitted in order. An empty string is a valid command.
	Commands []string `yaml:"commands"`

	// Timeout bounds the whole run, e.g. "2s". Defaults to DefaultTimeout.
	Timeout string `yaml:"timeout,omitempty"`

	// Assertions validate the replies.
	Assertions []Assertion `yaml:"assertions"`
}

// SettingsSpec mirrors engine.Settings in YAML.
type SettingsSpec struct {
	HashMB  int    `yaml:"hash_mb,omitempty"`
	Threads int    `yaml:"threads,omitempty"`
	Variant string `yaml:"variant,omitempty"`

	// Script is resolved relative to the scenario file.
	Script string `yaml:"script,omitempty"`
}

// Assertion validates the reply trace.
type Assertion struct {
	// Type is one of reply_contains, reply_equals, reply_order, reply_count.
	Type string `yaml:"type"`

	// Text is the substring (reply_contains) or exact line (reply_count).
	Text string `yaml:"text,omitempty"`

	// Lines are the expected lines (reply_equals, reply_order).
	Lines []string `yaml:"lines,omitempty"`

	// Count is the expected number of occurrences (reply_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertReplyContains = "reply_contains"
	AssertReplyEquals   = "reply_equals"
	AssertReplyOrder    = "reply_order"
	AssertReplyCount    = "reply_count"
)

// EngineSettings converts the YAML settings to engine.Settings.
func (s *Scenario) EngineSettings() engine.Settings {
	if s.Settings == nil {
		return engine.Settings{}
	}
	return engine.Settings{
		HashMB:  s.Settings.HashMB,
		Threads: s.Settings.Threads,
		Variant: s.Settings.Variant,
		Script:  s.Settings.Script,
	}
}

// TimeoutDuration returns the parsed timeout or DefaultTimeout.
func (s *Scenario) TimeoutDuration() time.Duration {
	if s.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative settings.script is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Settings != nil && scenario.Settings.Script != "" && !filepath.IsAbs(scenario.Settings.Script) {
		scenario.Settings.Script = filepath.Join(filepath.Dir(path), scenario.Settings.Script)
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Engine == "" {
		return fmt.Errorf("engine is required")
	}
	if len(s.Commands) == 0 {
		return fmt.Errorf("commands list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertReplyContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for reply_contains", index)
		}
	case AssertReplyEquals:
		if a.Lines == nil {
			return fmt.Errorf("assertions[%d]: lines is required for reply_equals", index)
		}
	case AssertReplyOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for reply_order", index)
		}
	case AssertReplyCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for reply_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
