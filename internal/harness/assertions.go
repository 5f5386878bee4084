package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s (%s)", event.Step, event.Element, event.Response, event.Menu)
		if event.Error != "" {
			fmt.Fprintf(&buf, " %s", event.Error)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// assertTraceCount checks that a response kind appears exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Response == assertion.Response {
			count++
		}
	}
	if count == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s responses", assertion.Count, assertion.Response),
		Actual:   fmt.Sprintf("%d %s responses", count, assertion.Response),
		Trace:    trace,
	}
}

// assertTraceOrder checks that responses appear in the given order.
// Responses don't need to be consecutive (intervening steps are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(assertion.Responses) && event.Response == assertion.Responses[next] {
			next++
		}
	}
	if next == len(assertion.Responses) {
		return nil
	}

	actual := make([]string, len(trace))
	for i, event := range trace {
		actual[i] = event.Response
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: strings.Join(assertion.Responses, " → "),
		Actual:   strings.Join(actual, " → "),
		Trace:    trace,
	}
}

// assertFinalState checks the decoded state of the visible message.
func assertFinalState(result *Result, assertion Assertion) error {
	if msg := compareState(assertion.State, result.State); msg != "" {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("state %v", assertion.State),
			Actual:   formatValues(result.State),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertFinalMenu checks which menu is visible after the last step.
func assertFinalMenu(result *Result, assertion Assertion) error {
	if result.Menu == assertion.Menu {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalMenu,
		Expected: assertion.Menu,
		Actual:   result.Menu,
		Trace:    result.Trace,
	}
}

// EvaluateAssertions runs every assertion against the result and returns
// the failure messages. An empty slice means every assertion held.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	errs := []string{}
	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result, assertion)
		case AssertFinalMenu:
			err = assertFinalMenu(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
