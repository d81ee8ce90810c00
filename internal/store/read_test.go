package store

import (
	"context"
	"testing"

	"github.com/retraceio/retrace/internal/record"
)

// seedTrace appends an env record and n steps for a trace.
func seedTrace(t *testing.T, s *Store, traceID, envID string, steps ...record.StepRecord) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.AppendEnv(ctx, record.EnvRecord{
		TraceID: traceID, EnvID: envID, Timestamp: testTime(0), Source: "test",
		Payload: map[string]any{"seed": true},
	}); err != nil {
		t.Fatalf("AppendEnv(%s) failed: %v", traceID, err)
	}
	for _, st := range steps {
		st.TraceID = traceID
		st.EnvID = envID
		if _, err := s.AppendStep(ctx, st); err != nil {
			t.Fatalf("AppendStep(%s/%d) failed: %v", traceID, st.StepID, err)
		}
	}
}

func TestReplayTrace_OrderEnvFirstThenSteps(t *testing.T) {
	s := openTestStore(t)
	seedTrace(t, s, "t-1", "e-1",
		record.StepRecord{StepID: 1, Timestamp: testTime(1), Node: "a", Status: record.StatusEnter},
		record.StepRecord{StepID: 2, Timestamp: testTime(2), Node: "a", Status: record.StatusExit},
		record.StepRecord{StepID: 3, Timestamp: testTime(3), Node: "b", Status: record.StatusEnter},
	)

	recs, err := s.ReplayTrace(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("ReplayTrace() failed: %v", err)
	}

	if len(recs) != 4 {
		t.Fatalf("len(records) = %d, want 4", len(recs))
	}
	if recs[0].Kind != record.KindEnv {
		t.Errorf("first record kind = %q, want env", recs[0].Kind)
	}
	for i, rec := range recs[1:] {
		if rec.Kind != record.KindStep {
			t.Fatalf("record %d kind = %q, want step", i+1, rec.Kind)
		}
		if rec.Step.StepID != int64(i+1) {
			t.Errorf("record %d step_id = %d, want %d", i+1, rec.Step.StepID, i+1)
		}
	}
}

func TestReplayTrace_UnknownTraceIsEmpty(t *testing.T) {
	s := openTestStore(t)
	seedTrace(t, s, "t-1", "e-1")

	recs, err := s.ReplayTrace(context.Background(), "nope")
	if err != nil {
		t.Fatalf("ReplayTrace() failed: %v", err)
	}
	if recs == nil {
		t.Fatal("records = nil, want empty slice")
	}
	if len(recs) != 0 {
		t.Errorf("len(records) = %d, want 0", len(recs))
	}
}

func TestReplayTrace_FiltersOtherTraces(t *testing.T) {
	s := openTestStore(t)
	seedTrace(t, s, "t-1", "e-1",
		record.StepRecord{StepID: 1, Timestamp: testTime(1), Node: "a", Status: record.StatusEnter})
	seedTrace(t, s, "t-2", "e-2",
		record.StepRecord{StepID: 1, Timestamp: testTime(1), Node: "x", Status: record.StatusEnter},
		record.StepRecord{StepID: 2, Timestamp: testTime(2), Node: "x", Status: record.StatusExit})

	recs, err := s.ReplayTrace(context.Background(), "t-2")
	if err != nil {
		t.Fatalf("ReplayTrace() failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(recs))
	}
	for _, rec := range recs {
		if rec.TraceID() != "t-2" {
			t.Errorf("record trace = %q, want t-2", rec.TraceID())
		}
	}
}

func TestAllRecords_AppendOrderSnapshot(t *testing.T) {
	s := openTestStore(t)
	seedTrace(t, s, "t-1", "e-1",
		record.StepRecord{StepID: 1, Timestamp: testTime(1), Node: "a", Status: record.StatusEnter})
	seedTrace(t, s, "t-2", "e-2")

	recs, err := s.AllRecords(context.Background())
	if err != nil {
		t.Fatalf("AllRecords() failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(recs))
	}
	for i, rec := range recs {
		if rec.Seq != int64(i+1) {
			t.Errorf("record %d seq = %d, want %d", i, rec.Seq, i+1)
		}
	}
}

func TestTraceIDs_FirstAppearanceOrder(t *testing.T) {
	s := openTestStore(t)
	seedTrace(t, s, "t-b", "e-1")
	seedTrace(t, s, "t-a", "e-2")

	ids, err := s.TraceIDs(context.Background())
	if err != nil {
		t.Fatalf("TraceIDs() failed: %v", err)
	}
	want := []string{"t-b", "t-a"}
	if len(ids) != len(want) {
		t.Fatalf("len(ids) = %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestAggregate(t *testing.T) {
	s := openTestStore(t)
	seedTrace(t, s, "t-1", "e-1",
		record.StepRecord{StepID: 1, Timestamp: testTime(1), Node: "a", Status: record.StatusEnter},
		record.StepRecord{StepID: 2, Timestamp: testTime(2), Node: "a", Status: record.StatusError},
	)
	seedTrace(t, s, "t-2", "e-2",
		record.StepRecord{StepID: 1, Timestamp: testTime(1), Node: "x", Status: record.StatusEnter},
		record.StepRecord{StepID: 2, Timestamp: testTime(2), Node: "x", Status: record.StatusExit},
		record.StepRecord{StepID: 3, Timestamp: testTime(3), Node: "y", Status: record.StatusEnter},
	)

	aggs, err := s.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("len(aggs) = %d, want 2", len(aggs))
	}

	first := aggs[0]
	if first.TraceID != "t-1" || first.EnvID != "e-1" {
		t.Errorf("first = %+v", first)
	}
	if first.Steps != 2 || first.Nodes != 1 || !first.HasError {
		t.Errorf("first aggregate = %+v", first)
	}

	second := aggs[1]
	if second.Steps != 3 || second.Nodes != 2 || second.HasError {
		t.Errorf("second aggregate = %+v", second)
	}
}

func TestScanRecord_RoundTripsPayloadAndMeta(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.AppendEnv(ctx, record.EnvRecord{
		TraceID: "t-1", EnvID: "e-1", Timestamp: testTime(0), Source: "api",
		Payload: map[string]any{"nested": map[string]any{"k": "v"}, "n": 2},
	}); err != nil {
		t.Fatalf("AppendEnv() failed: %v", err)
	}
	if _, err := s.AppendStep(ctx, record.StepRecord{
		TraceID: "t-1", EnvID: "e-1", StepID: 1, Timestamp: testTime(1),
		Node: "charge", Status: record.StatusEnter,
		Meta: map[string]any{"amount": 100},
	}); err != nil {
		t.Fatalf("AppendStep() failed: %v", err)
	}

	recs, err := s.ReplayTrace(ctx, "t-1")
	if err != nil {
		t.Fatalf("ReplayTrace() failed: %v", err)
	}

	env := recs[0].Env
	if env.Source != "api" {
		t.Errorf("source = %q, want api", env.Source)
	}
	nested, ok := env.Payload["nested"].(map[string]any)
	if !ok || nested["k"] != "v" {
		t.Errorf("payload nested = %#v", env.Payload["nested"])
	}

	step := recs[1].Step
	if step.Node != "charge" || step.Status != record.StatusEnter {
		t.Errorf("step = %+v", step)
	}
	// JSON numbers come back as float64
	if step.Meta["amount"] != float64(100) {
		t.Errorf("meta amount = %#v, want 100", step.Meta["amount"])
	}
	if !step.Timestamp.Equal(testTime(1)) {
		t.Errorf("timestamp = %v, want %v", step.Timestamp, testTime(1))
	}
}
