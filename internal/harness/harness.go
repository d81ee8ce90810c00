package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/retraceio/retrace/internal/record"
	"github.com/retraceio/retrace/internal/store"
	"github.com/retraceio/retrace/internal/testutil"
	"github.com/retraceio/retrace/internal/tracker"
)

// Run executes a scenario deterministically and returns its result.
//
// The scenario runs against a fresh in-memory record log with a fixed
// clock and sequential ids, so results are reproducible byte-for-byte.
//
// Execution flow:
//  1. Create a fresh in-memory store and tracker
//  2. Create the environment from the scenario payload
//  3. Issue steps in order, checking each declared expect_error;
//     rejected steps leave the context where it was
//  4. Replay the trace and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(store.Memory)
	if err != nil {
		return nil, fmt.Errorf("create in-memory store: %w", err)
	}
	defer st.Close()

	return RunWith(st, scenario,
		tracker.WithGenerator(testutil.NewFixedGenerator()),
		tracker.WithClock(testutil.NewFixedClock().Now),
		tracker.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// RunWith executes a scenario against a caller-provided store with the
// given tracker options. The CLI uses it to run scenarios into a shared or
// file-backed log with production ids; without options the tracker defaults
// (UUIDv7 ids, wall clock) apply, so repeated runs never collide.
func RunWith(st *store.Store, scenario *Scenario, opts ...tracker.Option) (*Result, error) {
	tr := tracker.New(st, opts...)

	ctx := context.Background()
	result := NewResult()

	// Scenario payloads decode from YAML as map[string]any; an absent
	// payload is nil and gets rejected by the tracker, same as the API.
	var payload any
	if scenario.Payload != nil {
		payload = scenario.Payload
	}
	cur, err := tr.CreateEnv(ctx, payload, scenario.Source)
	if err != nil {
		return nil, fmt.Errorf("create env: %w", err)
	}
	result.TraceID = cur.TraceID

	for i, spec := range scenario.Steps {
		next, err := tr.Step(ctx, cur, spec.Node, record.Status(spec.Status), spec.Meta)

		outcome := StepOutcome{Node: spec.Node, Status: spec.Status, Admitted: err == nil}
		if err != nil {
			outcome.GuardCode = string(tracker.CodeOf(err))
		}
		result.Outcomes = append(result.Outcomes, outcome)

		switch {
		case spec.ExpectError == "" && err != nil:
			result.AddError("step %d (%s %s): unexpected rejection: %v", i+1, spec.Node, spec.Status, err)
		case spec.ExpectError != "" && err == nil:
			result.AddError("step %d (%s %s): expected %s, but step was admitted", i+1, spec.Node, spec.Status, spec.ExpectError)
			cur = next
		case spec.ExpectError != "" && err != nil:
			if got := string(tracker.CodeOf(err)); got != spec.ExpectError {
				result.AddError("step %d (%s %s): expected %s, got %s", i+1, spec.Node, spec.Status, spec.ExpectError, got)
			}
		default:
			cur = next
		}
	}

	records, err := tr.Replay(ctx, result.TraceID)
	if err != nil {
		return nil, fmt.Errorf("replay trace: %w", err)
	}
	result.Trace = toTraceEvents(records)

	stats, err := tr.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	result.Stats = stats

	for _, assertion := range scenario.Assertions {
		if err := evaluate(result, assertion); err != nil {
			result.AddError("%v", err)
		}
	}

	return result, nil
}

// toTraceEvents converts replayed records to snapshot form.
func toTraceEvents(records []record.Record) []TraceEvent {
	events := make([]TraceEvent, 0, len(records))
	for _, rec := range records {
		switch rec.Kind {
		case record.KindEnv:
			events = append(events, TraceEvent{
				Type:    "env",
				Source:  rec.Env.Source,
				Payload: rec.Env.Payload,
			})
		case record.KindStep:
			events = append(events, TraceEvent{
				Type:   "step",
				StepID: rec.Step.StepID,
				Node:   rec.Step.Node,
				Status: string(rec.Step.Status),
				Meta:   rec.Step.Meta,
			})
		}
	}
	return events
}
