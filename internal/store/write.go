package store

import (
	"context"
	"fmt"

	"github.com/retraceio/retrace/internal/record"
)

// AppendEnv appends an environment-creation record and returns its seq.
//
// Each trace has exactly one env record (enforced by a unique index); a
// duplicate append is a caller bug and surfaces as a constraint error.
func (s *Store) AppendEnv(ctx context.Context, rec record.EnvRecord) (int64, error) {
	payloadJSON, err := marshalObject(rec.Payload)
	if err != nil {
		return 0, fmt.Errorf("append env: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO records (kind, trace_id, env_id, step_id, ts, source, payload)
		VALUES ('env', ?, ?, 0, ?, ?, ?)
	`,
		rec.TraceID,
		rec.EnvID,
		marshalTime(rec.Timestamp),
		rec.Source,
		payloadJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("append env: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append env: last insert id: %w", err)
	}
	return seq, nil
}

// AppendStep appends a step record and returns its seq.
//
// Step admission (guards, sequencing) happens before this call; the unique
// (trace_id, step_id) index is a last-line invariant check, not a guard.
func (s *Store) AppendStep(ctx context.Context, rec record.StepRecord) (int64, error) {
	metaJSON, err := marshalObject(rec.Meta)
	if err != nil {
		return 0, fmt.Errorf("append step: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO records (kind, trace_id, env_id, step_id, ts, node, status, meta)
		VALUES ('step', ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.TraceID,
		rec.EnvID,
		rec.StepID,
		marshalTime(rec.Timestamp),
		rec.Node,
		string(rec.Status),
		metaJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("append step: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append step: last insert id: %w", err)
	}
	return seq, nil
}
