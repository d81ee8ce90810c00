package tracker

import (
	"errors"
	"fmt"

	"github.com/retraceio/retrace/internal/record"
)

// GuardError reports a rejected call. Every kind is a caller-input or
// protocol violation; none are transient, and the tracker never retries or
// recovers internally. Surfacing is entirely the caller's responsibility.
//
// GuardError includes structured fields for diagnostics: which trace and
// node were involved and what the caller attempted.
type GuardError struct {
	// Code identifies the violated guard.
	Code GuardCode

	// Message is a human-readable description.
	Message string

	// TraceID identifies the affected trace, when known.
	TraceID string

	// Node is the node name the caller targeted (step guards only).
	Node string

	// Status is the status the caller attempted (step guards only).
	Status record.Status

	// Details contains additional context, e.g. expected vs presented
	// step counters for sequencing failures.
	Details map[string]string
}

// GuardCode categorizes guard failures.
type GuardCode string

const (
	// CodeInvalidPayload indicates an environment payload that is nil or
	// not a structured object.
	CodeInvalidPayload GuardCode = "INVALID_PAYLOAD"

	// CodeInvalidContext indicates a Context missing trace or env identity.
	CodeInvalidContext GuardCode = "INVALID_CONTEXT"

	// CodeUnknownTrace indicates no live state exists for the trace
	// (cleared, or never created).
	CodeUnknownTrace GuardCode = "UNKNOWN_TRACE"

	// CodeEnvMismatch indicates a Context carrying a valid trace id but a
	// foreign env id - forged, or copied from another trace.
	CodeEnvMismatch GuardCode = "ENV_MISMATCH"

	// CodeInvalidStepID indicates a malformed (negative) step counter.
	CodeInvalidStepID GuardCode = "INVALID_STEP_ID"

	// CodeOutOfSequence indicates a stale or jumped-ahead Context: its
	// counter does not match the count of steps already admitted.
	CodeOutOfSequence GuardCode = "OUT_OF_SEQUENCE"

	// CodeTraceTerminated indicates the trace was closed by an earlier
	// error step.
	CodeTraceTerminated GuardCode = "TRACE_TERMINATED"

	// CodeDoubleEnter indicates enter on an already-entered node.
	CodeDoubleEnter GuardCode = "DOUBLE_ENTER"

	// CodeExitWithoutEnter indicates exit on a node that is not entered.
	CodeExitWithoutEnter GuardCode = "EXIT_WITHOUT_ENTER"

	// CodeErrorWithoutEnter indicates error on a node that is not entered.
	CodeErrorWithoutEnter GuardCode = "ERROR_WITHOUT_ENTER"

	// CodeInvalidArgument indicates a malformed read argument or an
	// unrecognized step status.
	CodeInvalidArgument GuardCode = "INVALID_ARGUMENT"
)

// Error implements the error interface.
func (e *GuardError) Error() string {
	switch {
	case e.TraceID != "" && e.Node != "":
		return fmt.Sprintf("%s: %s (trace=%s, node=%s)", e.Code, e.Message, e.TraceID, e.Node)
	case e.TraceID != "":
		return fmt.Sprintf("%s: %s (trace=%s)", e.Code, e.Message, e.TraceID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// CodeOf extracts the guard code from an error.
// Returns an empty code if the error is not a GuardError.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) GuardCode {
	var ge *GuardError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsOutOfSequence returns true for stale- or forged-Context rejections.
func IsOutOfSequence(err error) bool {
	return CodeOf(err) == CodeOutOfSequence
}

// IsTraceTerminated returns true for steps rejected by the terminal-error lock.
func IsTraceTerminated(err error) bool {
	return CodeOf(err) == CodeTraceTerminated
}

func newInvalidPayload() *GuardError {
	return &GuardError{
		Code:    CodeInvalidPayload,
		Message: "environment payload must be a non-nil structured object",
	}
}

func newOutOfSequence(traceID, node string, status record.Status, expected, presented int64) *GuardError {
	return &GuardError{
		Code:    CodeOutOfSequence,
		Message: fmt.Sprintf("context is stale or forged (expected step %d, presented %d)", expected, presented),
		TraceID: traceID,
		Node:    node,
		Status:  status,
		Details: map[string]string{
			"expected":  fmt.Sprintf("%d", expected),
			"presented": fmt.Sprintf("%d", presented),
		},
	}
}

func newStepError(code GuardCode, message, traceID, node string, status record.Status) *GuardError {
	return &GuardError{
		Code:    code,
		Message: message,
		TraceID: traceID,
		Node:    node,
		Status:  status,
	}
}
