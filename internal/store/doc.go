// Package store provides the SQLite-backed append-only record log.
//
// The log holds environment-creation records and step records for all
// traces, in append order. It is the only thing replay reads: replaying a
// trace does not consult live trace state, so log entries remain readable
// even after trace state has been discarded.
//
// # Patterns
//
//   - Append-only: records are never updated or deleted individually; the
//     only destructive operation is Clear, which empties the whole log.
//   - Ordering: all reads order by the seq column (append position) and
//     step_id, never by timestamps. Timestamps are stored for display only.
//   - Deterministic reads: every query carries an explicit ORDER BY so
//     identical logs produce identical read results.
//
// # Database configuration
//
//   - ":memory:" by default; nothing survives the process unless a caller
//     explicitly opens a file path
//   - WAL mode (no-op for in-memory databases)
//   - Single connection: SQLite supports one writer at a time, and a single
//     connection also keeps an in-memory database visible to all callers
//   - busy_timeout=5000: wait for locks up to 5 seconds
package store
