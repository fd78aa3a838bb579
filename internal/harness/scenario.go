package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Operation names used in scenario steps.
const (
	OpInitialize = "initialize"
	OpSet        = "set"
	OpRead       = "read"
	OpReset      = "reset"
	OpConfig     = "config"
)

// CaseOK is the expected case for a successful step.
const CaseOK = "ok"

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against a fresh registry.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one registry operation.
type Step struct {
	// Op is one of initialize, set, read, reset, config.
	Op string `yaml:"op"`

	// Caller is the fixture name of the verified caller (initialize, set,
	// reset).
	Caller string `yaml:"caller,omitempty"`

	// Target is the fixture name whose record is read or reset.
	Target string `yaml:"target,omitempty"`

	// Value is the number written by set and reset.
	Value *uint64 `yaml:"value,omitempty"`

	// Expect is the expected outcome. Nil means the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Case is "ok" or an error code such as UNAUTHORIZED.
	Case string `yaml:"case"`

	// Value, Owner and Admin are matched against the step's result when set.
	Value *uint64 `yaml:"value,omitempty"`
	Owner string  `yaml:"owner,omitempty"`
	Admin string  `yaml:"admin,omitempty"`
}

// Assertion validates the final trace or state.
type Assertion struct {
	Type   string  `yaml:"type"`
	Owner  string  `yaml:"owner,omitempty"`
	Value  *uint64 `yaml:"value,omitempty"`
	Absent bool    `yaml:"absent,omitempty"`
	Admin  string  `yaml:"admin,omitempty"`
	Op     string  `yaml:"op,omitempty"`
	Case   string  `yaml:"case,omitempty"`
	Count  *int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalRecord = "final_record"
	AssertFinalConfig = "final_config"
	AssertRecordCount = "record_count"
	AssertTraceCount  = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, fails the
// schema, contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	// Strict decode catches typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks per-op field requirements.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpInitialize:
			if step.Caller == "" {
				return fmt.Errorf("steps[%d]: caller is required for initialize", i)
			}
		case OpSet:
			if step.Caller == "" || step.Value == nil {
				return fmt.Errorf("steps[%d]: caller and value are required for set", i)
			}
		case OpRead:
			if step.Target == "" {
				return fmt.Errorf("steps[%d]: target is required for read", i)
			}
		case OpReset:
			if step.Caller == "" || step.Target == "" || step.Value == nil {
				return fmt.Errorf("steps[%d]: caller, target and value are required for reset", i)
			}
		case OpConfig:
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertFinalRecord:
		if a.Owner == "" {
			return fmt.Errorf("assertions[%d]: owner is required for final_record", index)
		}
		if a.Absent == (a.Value != nil) {
			return fmt.Errorf("assertions[%d]: final_record needs exactly one of value or absent", index)
		}
	case AssertFinalConfig:
		if a.Admin == "" {
			return fmt.Errorf("assertions[%d]: admin is required for final_config", index)
		}
	case AssertRecordCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for record_count", index)
		}
	case AssertTraceCount:
		if a.Op == "" || a.Count == nil {
			return fmt.Errorf("assertions[%d]: op and count are required for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
