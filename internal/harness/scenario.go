package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a declarative trace test.
// It creates one environment and drives a sequence of steps against it.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Source is the env record source label. Defaults to "harness".
	Source string `yaml:"source,omitempty"`

	// Payload is the environment payload. Must be a structured object.
	Payload map[string]any `yaml:"payload"`

	// Steps is the sequence of step calls to issue, in order.
	Steps []StepSpec `yaml:"steps"`

	// Assertions validate the resulting trace after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// StepSpec is one step call within a scenario.
type StepSpec struct {
	// Node is the stage name the step targets.
	Node string `yaml:"node"`

	// Status is one of enter, exit, error.
	Status string `yaml:"status"`

	// Meta is optional step metadata, stored verbatim.
	Meta map[string]any `yaml:"meta,omitempty"`

	// ExpectError, when set, asserts that this step is rejected with the
	// given guard code (e.g. "TRACE_TERMINATED"). The scenario continues
	// with the last good context.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the trace produced by a scenario.
type Assertion struct {
	// Type is one of record_count, step_count, critical_error, step_order.
	Type string `yaml:"type"`

	// Count is the expected count (record_count, step_count).
	Count int `yaml:"count,omitempty"`

	// Value is the expected flag (critical_error).
	Value bool `yaml:"value,omitempty"`

	// Steps is the expected "node:status" sequence (step_order).
	Steps []string `yaml:"steps,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordCount   = "record_count"
	AssertStepCount     = "step_count"
	AssertCriticalError = "critical_error"
	AssertStepOrder     = "step_order"
)

// Load reads, schema-validates, and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse validates scenario YAML against the embedded CUE schema and decodes
// it. The filename is used only for error positions.
func Parse(filename string, data []byte) (*Scenario, error) {
	if err := validateScenario(filename, data); err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if sc.Source == "" {
		sc.Source = "harness"
	}
	return &sc, nil
}
