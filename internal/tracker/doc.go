// Package tracker implements the per-trace state machine and guard logic.
//
// The Tracker owns two pieces of process-wide state: the append-only record
// log (internal/store) and the trace state table, a map from trace id to
// mutable per-trace state. Callers create an environment to start a trace,
// then thread the returned Context through successive Step calls. Each
// successful Step returns a fresh Context; presenting anything else is
// rejected before any state changes.
//
// ARCHITECTURE:
//
// Single-writer discipline:
// All mutation goes through one mutex. A Context is a single-writer token -
// advancing it from two goroutines against the same trace makes exactly one
// of them observe OUT_OF_SEQUENCE. That is race detection working as
// intended, not something the tracker masks.
//
// Guard pipeline (fail-fast, first violated guard wins):
//  1. Context shape       -> INVALID_CONTEXT
//  2. Trace existence     -> UNKNOWN_TRACE
//  3. Identity integrity  -> ENV_MISMATCH
//  4. Step sequencing     -> INVALID_STEP_ID / OUT_OF_SEQUENCE
//  5. Terminal-error lock -> TRACE_TERMINATED
//  6. Node state machine  -> DOUBLE_ENTER / EXIT_WITHOUT_ENTER / ERROR_WITHOUT_ENTER
//
// A rejected step never mutates state and never appends to the log.
//
// Each node independently follows idle -enter-> entered -exit-> exited, with
// re-entry after exit allowed, and entered -error-> errored. An error step is
// a successful call that permanently closes the whole trace: every later
// step on it fails TRACE_TERMINATED.
package tracker
