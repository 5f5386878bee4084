package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted session against one menu.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Menu is the path of the menu opened first.
	Menu string `yaml:"menu"`

	// Open seeds the leading slots of the opened menu.
	Open []any `yaml:"open,omitempty"`

	// MaxIDLength overrides the registry's identifier limit when set.
	MaxIDLength int `yaml:"max_id_length,omitempty"`

	// Token prefixes the dispatch tokens, for deterministic traces.
	// Defaults to the scenario name.
	Token string `yaml:"token,omitempty"`

	Steps []Step `yaml:"steps"`

	// Assertions validate the whole session after the last step.
	// Supported types: trace_count, trace_order, final_state, final_menu
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one user action. Exactly one of Click or Submit is set.
type Step struct {
	// Click names the element of the visible message to activate.
	Click string `yaml:"click,omitempty"`

	// Values are the options picked when Click names a select.
	Values []string `yaml:"values,omitempty"`

	// Submit fills the open modal's inputs by name and submits it.
	Submit map[string]string `yaml:"submit,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks the outcome of one step. Empty fields are not checked.
type Expect struct {
	// Response is ack, update, modal or error.
	Response string `yaml:"response,omitempty"`

	// Menu is the path of the menu visible after the step.
	Menu string `yaml:"menu,omitempty"`

	// Content is the exact content of the visible message.
	Content string `yaml:"content,omitempty"`

	// Error is the error code the step must fail with.
	Error string `yaml:"error,omitempty"`

	// State is the full decoded state of the visible message.
	State []any `yaml:"state,omitempty"`
}

// Assertion validates the session after the last step.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_count": Response kind appears exactly Count times
	// - "trace_order": Responses appear in this order (gaps allowed)
	// - "final_state": Decoded state of the visible message equals State
	// - "final_menu": The visible menu is Menu
	Type string `yaml:"type"`

	// Response is the response kind (used by trace_count).
	Response string `yaml:"response,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Responses is the expected response order (used by trace_order).
	Responses []string `yaml:"responses,omitempty"`

	// State is the expected decoded state (used by final_state).
	State []any `yaml:"state,omitempty"`

	// Menu is the expected menu path (used by final_menu).
	Menu string `yaml:"menu,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceCount = "trace_count"
	AssertTraceOrder = "trace_order"
	AssertFinalState = "final_state"
	AssertFinalMenu  = "final_menu"
)

var responseKinds = map[string]bool{"ack": true, "update": true, "modal": true, "error": true}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
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

	if s.Menu == "" {
		return fmt.Errorf("menu is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.MaxIDLength < 0 {
		return fmt.Errorf("max_id_length must be positive")
	}

	for i, step := range s.Steps {
		if (step.Click == "") == (step.Submit == nil) {
			return fmt.Errorf("steps[%d]: exactly one of click or submit is required", i)
		}
		if step.Submit != nil && len(step.Values) > 0 {
			return fmt.Errorf("steps[%d]: values only apply to click", i)
		}
		if step.Expect != nil && step.Expect.Response != "" && !responseKinds[step.Expect.Response] {
			return fmt.Errorf("steps[%d].expect: unknown response %q", i, step.Expect.Response)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceCount:
		if !responseKinds[a.Response] {
			return fmt.Errorf("assertions[%d]: response is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTraceOrder:
		if len(a.Responses) == 0 {
			return fmt.Errorf("assertions[%d]: responses list is required for trace_order", index)
		}
	case AssertFinalState:
		if a.State == nil {
			return fmt.Errorf("assertions[%d]: state is required for final_state", index)
		}
	case AssertFinalMenu:
		if a.Menu == "" {
			return fmt.Errorf("assertions[%d]: menu is required for final_menu", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
