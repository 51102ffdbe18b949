package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios execute a sequence of timeline operations and assert on the
// resulting beats, measures, and history ledger.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// snapshot file when the scenario runs under golden comparison.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps are the timeline operations to execute in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final timeline state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one timeline operation. Op selects the operation; the other
// fields parameterize it and unused fields are ignored.
type Step struct {
	Op string `yaml:"op"`

	// add_beats
	Count    int      `yaml:"count,omitempty"`
	Duration *float64 `yaml:"duration,omitempty"`
	Notes    string   `yaml:"notes,omitempty"`

	// add_beats, shift, tempo_group
	At *int `yaml:"at,omitempty"`

	// shift
	By int `yaml:"by,omitempty"`

	// remove_beats, remove_measures
	IDs []int64 `yaml:"ids,omitempty"`

	// add_measure
	StartBeat int64  `yaml:"start_beat,omitempty"`
	Mark      string `yaml:"mark,omitempty"`
	Ghost     bool   `yaml:"ghost,omitempty"`

	// tempo_group
	Tempo           float64 `yaml:"tempo,omitempty"`
	BeatsPerMeasure int     `yaml:"beats_per_measure,omitempty"`
	Repeats         int     `yaml:"repeats,omitempty"`

	// ExpectRejected marks a step that must fail validation. The harness
	// verifies the rejection left no trace: same positions, same history.
	ExpectRejected bool `yaml:"expect_rejected,omitempty"`
}

// Assertion validates one property of the final timeline.
type Assertion struct {
	Type      string `yaml:"type"`
	Count     int    `yaml:"count,omitempty"`
	Positions []int  `yaml:"positions,omitempty"`
}

// knownOps lists the operations a step may name.
var knownOps = map[string]bool{
	"add_beats":            true,
	"remove_beats":         true,
	"update_all_durations": true,
	"shift":                true,
	"flatten":              true,
	"add_measure":          true,
	"remove_measures":      true,
	"ensure_ghost":         true,
	"tempo_group":          true,
}

// knownAssertions lists the assertion types.
var knownAssertions = map[string]bool{
	"beat_count":    true,
	"measure_count": true,
	"positions":     true,
	"history_len":   true,
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "step:" vs "steps:"
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

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if !knownOps[step.Op] {
			return fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}
	}
	for i, a := range s.Assertions {
		if !knownAssertions[a.Type] {
			return fmt.Errorf("assertion %d: unknown type %q", i+1, a.Type)
		}
	}
	return nil
}
