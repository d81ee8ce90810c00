package store

import (
	"context"
	"testing"

	"github.com/retraceio/retrace/internal/record"
)

func TestAppendEnv_Basic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seq, err := s.AppendEnv(ctx, record.EnvRecord{
		TraceID:   "t-1",
		EnvID:     "e-1",
		Timestamp: testTime(0),
		Source:    "unit-test",
		Payload:   map[string]any{"request_id": "r-42", "attempt": 1},
	})
	if err != nil {
		t.Fatalf("AppendEnv() failed: %v", err)
	}
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}

	// Verify stored correctly
	var kind, traceID, envID, source, payload string
	err = s.db.QueryRow(`
		SELECT kind, trace_id, env_id, source, payload FROM records WHERE seq = ?
	`, seq).Scan(&kind, &traceID, &envID, &source, &payload)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if kind != "env" {
		t.Errorf("kind = %q, want env", kind)
	}
	if traceID != "t-1" {
		t.Errorf("trace_id = %q, want t-1", traceID)
	}
	if envID != "e-1" {
		t.Errorf("env_id = %q, want e-1", envID)
	}
	if source != "unit-test" {
		t.Errorf("source = %q, want unit-test", source)
	}
	// Canonical JSON: sorted keys
	if payload != `{"attempt":1,"request_id":"r-42"}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestAppendEnv_DuplicateTraceRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	env := record.EnvRecord{
		TraceID: "t-1", EnvID: "e-1", Timestamp: testTime(0), Source: "test",
		Payload: map[string]any{"a": 1},
	}
	if _, err := s.AppendEnv(ctx, env); err != nil {
		t.Fatalf("first AppendEnv() failed: %v", err)
	}
	if _, err := s.AppendEnv(ctx, env); err == nil {
		t.Error("second AppendEnv() for same trace succeeded, want constraint error")
	}
}

func TestAppendStep_Basic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.AppendEnv(ctx, record.EnvRecord{
		TraceID: "t-1", EnvID: "e-1", Timestamp: testTime(0), Source: "test",
		Payload: map[string]any{"a": 1},
	}); err != nil {
		t.Fatalf("AppendEnv() failed: %v", err)
	}

	seq, err := s.AppendStep(ctx, record.StepRecord{
		TraceID:   "t-1",
		EnvID:     "e-1",
		StepID:    1,
		Timestamp: testTime(1),
		Node:      "validate",
		Status:    record.StatusEnter,
		Meta:      map[string]any{"items": 3},
	})
	if err != nil {
		t.Fatalf("AppendStep() failed: %v", err)
	}
	if seq != 2 {
		t.Errorf("seq = %d, want 2", seq)
	}
}

func TestAppendStep_NilMeta(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.AppendStep(ctx, record.StepRecord{
		TraceID: "t-1", EnvID: "e-1", StepID: 1, Timestamp: testTime(1),
		Node: "n", Status: record.StatusEnter,
	}); err != nil {
		t.Fatalf("AppendStep() with nil meta failed: %v", err)
	}

	recs, err := s.ReplayTrace(ctx, "t-1")
	if err != nil {
		t.Fatalf("ReplayTrace() failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(recs))
	}
	if recs[0].Step.Meta != nil {
		t.Errorf("meta = %v, want nil", recs[0].Step.Meta)
	}
}

func TestAppendStep_DuplicateStepIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	step := record.StepRecord{
		TraceID: "t-1", EnvID: "e-1", StepID: 1, Timestamp: testTime(1),
		Node: "n", Status: record.StatusEnter,
	}
	if _, err := s.AppendStep(ctx, step); err != nil {
		t.Fatalf("first AppendStep() failed: %v", err)
	}
	if _, err := s.AppendStep(ctx, step); err == nil {
		t.Error("duplicate step_id append succeeded, want constraint error")
	}
}
