package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/retraceio/retrace/internal/record"
)

// TraceSnapshot captures the complete trace of a scenario execution.
// Serialized with canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	TraceID      string
	Trace        []TraceEvent
}

// toCanonicalMap converts the snapshot to plain maps for canonical JSON
// serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type": event.Type,
		}
		if event.Type == "step" {
			eventMap["step_id"] = event.StepID
			eventMap["node"] = event.Node
			eventMap["status"] = event.Status
			if event.Meta != nil {
				eventMap["meta"] = event.Meta
			}
		} else {
			eventMap["source"] = event.Source
			eventMap["payload"] = event.Payload
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace_id":      s.TraceID,
		"trace":         traceList,
	}
}

// RunWithGolden executes a scenario and compares its trace against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if execution fails; trace mismatches fail the test via
// goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		TraceID:      result.TraceID,
		Trace:        result.Trace,
	}

	traceJSON, err := record.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
