package harness

import (
	"fmt"

	"github.com/retraceio/retrace/internal/tracker"
)

// TraceEvent is one replayed record in snapshot form.
// Timestamps are omitted: they are display metadata, and leaving them out
// keeps golden files focused on what the guards admitted.
type TraceEvent struct {
	Type    string         `json:"type"` // "env" or "step"
	StepID  int64          `json:"step_id,omitempty"`
	Source  string         `json:"source,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Node    string         `json:"node,omitempty"`
	Status  string         `json:"status,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// StepOutcome records how one scenario step fared.
type StepOutcome struct {
	Node     string `json:"node"`
	Status   string `json:"status"`
	Admitted bool   `json:"admitted"`
	// GuardCode is set when the step was rejected.
	GuardCode string `json:"guard_code,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step behaved as declared and every assertion held.
	Pass bool `json:"pass"`

	// TraceID is the trace the scenario ran against.
	TraceID string `json:"trace_id"`

	// Trace is the replayed record sequence, env record first.
	Trace []TraceEvent `json:"trace"`

	// Outcomes lists per-step admission results in scenario order.
	Outcomes []StepOutcome `json:"outcomes"`

	// Errors contains validation failures. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Stats is the tracker state after the run.
	Stats tracker.Stats `json:"stats"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Outcomes: []StepOutcome{},
		Errors:   []string{},
	}
}

// AddError records a validation failure and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
