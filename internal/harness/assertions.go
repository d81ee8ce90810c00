package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when a scenario assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %s failed: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// evaluate checks one assertion against a result.
func evaluate(result *Result, assertion Assertion) error {
	switch assertion.Type {
	case AssertRecordCount:
		return assertRecordCount(result, assertion)
	case AssertStepCount:
		return assertStepCount(result, assertion)
	case AssertCriticalError:
		return assertCriticalError(result, assertion)
	case AssertStepOrder:
		return assertStepOrder(result, assertion)
	default:
		return fmt.Errorf("unknown assertion type %q", assertion.Type)
	}
}

// assertRecordCount checks the total replayed record count, env included.
func assertRecordCount(result *Result, assertion Assertion) error {
	if got := len(result.Trace); got != assertion.Count {
		return &AssertionError{
			Type:     AssertRecordCount,
			Expected: fmt.Sprintf("%d records", assertion.Count),
			Actual:   fmt.Sprintf("%d records", got),
		}
	}
	return nil
}

// assertStepCount checks the count of admitted steps.
func assertStepCount(result *Result, assertion Assertion) error {
	got := 0
	for _, ev := range result.Trace {
		if ev.Type == "step" {
			got++
		}
	}
	if got != assertion.Count {
		return &AssertionError{
			Type:     AssertStepCount,
			Expected: fmt.Sprintf("%d steps", assertion.Count),
			Actual:   fmt.Sprintf("%d steps", got),
		}
	}
	return nil
}

// assertCriticalError checks the trace's terminal-error flag.
func assertCriticalError(result *Result, assertion Assertion) error {
	got := false
	for _, summary := range result.Stats.Traces {
		if summary.TraceID == result.TraceID {
			got = summary.HasCriticalError
		}
	}
	if got != assertion.Value {
		return &AssertionError{
			Type:     AssertCriticalError,
			Expected: fmt.Sprintf("critical_error=%v", assertion.Value),
			Actual:   fmt.Sprintf("critical_error=%v", got),
		}
	}
	return nil
}

// assertStepOrder checks the exact "node:status" sequence of admitted steps.
func assertStepOrder(result *Result, assertion Assertion) error {
	var got []string
	for _, ev := range result.Trace {
		if ev.Type == "step" {
			got = append(got, ev.Node+":"+ev.Status)
		}
	}

	matches := len(got) == len(assertion.Steps)
	if matches {
		for i := range got {
			if got[i] != assertion.Steps[i] {
				matches = false
				break
			}
		}
	}
	if !matches {
		return &AssertionError{
			Type:     AssertStepOrder,
			Expected: strings.Join(assertion.Steps, ", "),
			Actual:   strings.Join(got, ", "),
		}
	}
	return nil
}
