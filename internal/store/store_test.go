package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/retraceio/retrace/internal/record"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Memory)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testTime(step int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, step, 0, time.UTC)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	count, err := s.CountRecords(context.Background())
	if err != nil {
		t.Fatalf("CountRecords() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh store count = %d, want 0", count)
	}
}

func TestOpen_EmptyPathIsMemory(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\") failed: %v", err)
	}
	defer s.Close()
}

func TestClear_EmptiesLogAndResetsSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.AppendEnv(ctx, record.EnvRecord{
		TraceID: "t-1", EnvID: "e-1", Timestamp: testTime(0), Source: "test",
		Payload: map[string]any{"a": 1},
	}); err != nil {
		t.Fatalf("AppendEnv() failed: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	count, err := s.CountRecords(ctx)
	if err != nil {
		t.Fatalf("CountRecords() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count after clear = %d, want 0", count)
	}

	// Seq restarts at 1 after clear
	seq, err := s.AppendEnv(ctx, record.EnvRecord{
		TraceID: "t-2", EnvID: "e-2", Timestamp: testTime(0), Source: "test",
		Payload: map[string]any{"a": 1},
	})
	if err != nil {
		t.Fatalf("AppendEnv() after clear failed: %v", err)
	}
	if seq != 1 {
		t.Errorf("seq after clear = %d, want 1", seq)
	}
}
