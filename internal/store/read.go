package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/retraceio/retrace/internal/record"
)

// ReplayTrace returns every record belonging to a trace: the env record
// first, then step records in increasing step_id order.
//
// This reads only the log. It returns an empty slice (not nil) for an
// unknown trace; trace-state existence is deliberately not consulted.
func (s *Store) ReplayTrace(ctx context.Context, traceID string) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, trace_id, env_id, step_id, ts, source, node, status, payload, meta
		FROM records
		WHERE trace_id = ?
		ORDER BY CASE kind WHEN 'env' THEN 0 ELSE 1 END, step_id ASC, seq ASC
	`, traceID)
	if err != nil {
		return nil, fmt.Errorf("replay trace: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// AllRecords returns a snapshot copy of the whole log in append order.
func (s *Store) AllRecords(ctx context.Context) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, trace_id, env_id, step_id, ts, source, node, status, payload, meta
		FROM records
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("all records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// CountRecords returns the total number of records in the log.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// TraceIDs returns every distinct trace id present in the log, in first
// appearance (seq) order.
func (s *Store) TraceIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trace_id FROM records
		GROUP BY trace_id
		ORDER BY MIN(seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("trace ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan trace id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace ids: %w", err)
	}

	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// TraceAggregate summarizes one trace from the log alone. Used by the CLI
// stats output, which may run against a log whose trace state is gone.
type TraceAggregate struct {
	TraceID  string `json:"trace_id"`
	EnvID    string `json:"env_id"`
	Steps    int64  `json:"steps"`
	Nodes    int64  `json:"nodes"`
	HasError bool   `json:"has_error"`
}

// Aggregate computes per-trace summaries from the log, ordered by first
// appearance.
func (s *Store) Aggregate(ctx context.Context) ([]TraceAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trace_id,
		       MAX(env_id),
		       COUNT(CASE WHEN kind = 'step' THEN 1 END),
		       COUNT(DISTINCT CASE WHEN kind = 'step' THEN node END),
		       MAX(CASE WHEN status = 'error' THEN 1 ELSE 0 END)
		FROM records
		GROUP BY trace_id
		ORDER BY MIN(seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	defer rows.Close()

	var aggs []TraceAggregate
	for rows.Next() {
		var a TraceAggregate
		var hasError int
		if err := rows.Scan(&a.TraceID, &a.EnvID, &a.Steps, &a.Nodes, &hasError); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		a.HasError = hasError != 0
		aggs = append(aggs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregates: %w", err)
	}

	if aggs == nil {
		aggs = []TraceAggregate{}
	}
	return aggs, nil
}

// collectRecords scans a record query into the wrapper type.
func collectRecords(rows *sql.Rows) ([]record.Record, error) {
	var records []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	if records == nil {
		records = []record.Record{}
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (record.Record, error) {
	var (
		seq                  int64
		kind                 string
		traceID, envID       string
		stepID               int64
		ts                   string
		source, node, status sql.NullString
		payload, meta        sql.NullString
	)
	if err := rows.Scan(&seq, &kind, &traceID, &envID, &stepID, &ts, &source, &node, &status, &payload, &meta); err != nil {
		return record.Record{}, fmt.Errorf("scan record: %w", err)
	}

	timestamp, err := unmarshalTime(ts)
	if err != nil {
		return record.Record{}, err
	}

	switch record.Kind(kind) {
	case record.KindEnv:
		p, err := unmarshalObject(payload.String)
		if err != nil {
			return record.Record{}, fmt.Errorf("env payload: %w", err)
		}
		return record.Record{
			Kind: record.KindEnv,
			Seq:  seq,
			Env: &record.EnvRecord{
				TraceID:   traceID,
				EnvID:     envID,
				Timestamp: timestamp,
				Source:    source.String,
				Payload:   p,
			},
		}, nil
	case record.KindStep:
		m, err := unmarshalObject(meta.String)
		if err != nil {
			return record.Record{}, fmt.Errorf("step meta: %w", err)
		}
		return record.Record{
			Kind: record.KindStep,
			Seq:  seq,
			Step: &record.StepRecord{
				TraceID:   traceID,
				EnvID:     envID,
				StepID:    stepID,
				Timestamp: timestamp,
				Node:      node.String,
				Status:    record.Status(status.String),
				Meta:      m,
			},
		}, nil
	default:
		return record.Record{}, fmt.Errorf("unknown record kind %q at seq %d", kind, seq)
	}
}
