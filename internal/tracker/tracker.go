package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/retraceio/retrace/internal/record"
	"github.com/retraceio/retrace/internal/store"
)

// DefaultSource labels env records created without an explicit source.
const DefaultSource = "unknown"

// Tracker validates and records execution steps against traces.
//
// Construct one per host application and inject it where needed; the record
// log and trace state table are shared mutable state whose lifetime the
// host owns. There is no implicit singleton.
type Tracker struct {
	mu     sync.Mutex
	store  *store.Store
	traces map[string]*traceState
	gen    Generator
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithGenerator overrides the trace/env id generator.
// Tests use testutil.FixedGenerator for deterministic ids.
func WithGenerator(g Generator) Option {
	return func(t *Tracker) { t.gen = g }
}

// WithClock overrides the timestamp source.
// Timestamps are display metadata only; nothing orders by them.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the diagnostic logger.
// Guard failures are returned to the caller, never logged as the surfacing
// mechanism; the logger only carries debug-level admission traces.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// New creates a Tracker over the given record log.
func New(s *store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		traces: make(map[string]*traceState),
		gen:    UUIDv7Generator{},
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CreateEnv starts a new trace: it allocates fresh trace and env ids,
// appends the environment record, seeds the trace state, and returns the
// Context the caller threads into the first Step call.
//
// The payload must be a non-nil structured object; it is stored verbatim
// with no schema beyond that. Source defaults to DefaultSource when empty.
//
// Log append and state insertion are atomic relative to the call: on a
// store error no trace state becomes visible.
func (t *Tracker) CreateEnv(ctx context.Context, payload any, source string) (record.Context, error) {
	p, ok := record.AsPayload(payload)
	if !ok {
		return record.Context{}, newInvalidPayload()
	}
	if source == "" {
		source = DefaultSource
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	traceID := t.gen.NewTraceID()
	envID := t.gen.NewEnvID()

	_, err := t.store.AppendEnv(ctx, record.EnvRecord{
		TraceID:   traceID,
		EnvID:     envID,
		Timestamp: t.now(),
		Source:    source,
		Payload:   p,
	})
	if err != nil {
		return record.Context{}, fmt.Errorf("create env: %w", err)
	}

	t.traces[traceID] = newTraceState(envID)
	t.logger.Debug("trace created", "trace", traceID, "env", envID, "source", source)

	return record.Context{TraceID: traceID, EnvID: envID, StepID: 0}, nil
}

// Step validates a proposed step against the presented Context and live
// trace state and, only if every guard passes, admits it: the step record
// is appended, node and trace state advance, and a fresh Context one
// position ahead is returned. The returned Context is a snapshot, not a
// live handle; the caller must use it for the next call.
//
// Guard order is fixed and fail-fast; see the package documentation. A
// rejected step returns a *GuardError and changes nothing.
func (t *Tracker) Step(ctx context.Context, c record.Context, node string, status record.Status, meta map[string]any) (record.Context, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Guard 1: context shape.
	if c.TraceID == "" || c.EnvID == "" {
		return record.Context{}, newStepError(CodeInvalidContext,
			"context is missing trace or env identity", c.TraceID, node, status)
	}

	// Guard 2: trace existence (covers cleared and never-created traces).
	ts, ok := t.traces[c.TraceID]
	if !ok {
		return record.Context{}, newStepError(CodeUnknownTrace,
			"no live state for trace", c.TraceID, node, status)
	}

	// Guard 3: identity integrity. A valid trace id with a foreign env id
	// means the context was forged or copied from another lineage.
	if c.EnvID != ts.envID {
		return record.Context{}, newStepError(CodeEnvMismatch,
			"context env does not match trace env", c.TraceID, node, status)
	}

	// Guard 4: step sequencing. The context's counter is a fencing token -
	// it must equal the exact count of steps already admitted.
	if c.StepID < 0 {
		return record.Context{}, newStepError(CodeInvalidStepID,
			fmt.Sprintf("step counter must be non-negative, got %d", c.StepID),
			c.TraceID, node, status)
	}
	if c.StepID != ts.lastStepID {
		return record.Context{}, newOutOfSequence(c.TraceID, node, status, ts.lastStepID, c.StepID)
	}

	// Guard 5: terminal-error lock. The strongest guard: once any node
	// reported an error the trace is permanently closed, regardless of
	// node or status.
	if ts.hasCriticalError {
		return record.Context{}, newStepError(CodeTraceTerminated,
			"trace was terminated by an earlier error step", c.TraceID, node, status)
	}

	// Guard 6: per-node state machine.
	ns := ts.node(node)
	switch status {
	case record.StatusEnter:
		if ns.status == NodeEntered {
			return record.Context{}, newStepError(CodeDoubleEnter,
				"node is already entered", c.TraceID, node, status)
		}
		if ns.status == NodeErrored {
			// Unreachable while guard 5 holds; kept so the node machine is
			// sound on its own.
			return record.Context{}, newStepError(CodeDoubleEnter,
				"node is errored", c.TraceID, node, status)
		}
	case record.StatusExit:
		if ns.status != NodeEntered {
			return record.Context{}, newStepError(CodeExitWithoutEnter,
				fmt.Sprintf("exit requires an entered node, node is %s", ns.status),
				c.TraceID, node, status)
		}
	case record.StatusError:
		if ns.status != NodeEntered {
			return record.Context{}, newStepError(CodeErrorWithoutEnter,
				fmt.Sprintf("error requires an entered node, node is %s", ns.status),
				c.TraceID, node, status)
		}
	default:
		return record.Context{}, newStepError(CodeInvalidArgument,
			fmt.Sprintf("unknown step status %q", status), c.TraceID, node, status)
	}

	// All guards passed: append first, so a store failure leaves no state
	// change behind.
	stepID := ts.lastStepID + 1
	_, err := t.store.AppendStep(ctx, record.StepRecord{
		TraceID:   c.TraceID,
		EnvID:     c.EnvID,
		StepID:    stepID,
		Timestamp: t.now(),
		Node:      node,
		Status:    status,
		Meta:      meta,
	})
	if err != nil {
		return record.Context{}, fmt.Errorf("admit step: %w", err)
	}

	switch status {
	case record.StatusEnter:
		ns.status = NodeEntered
	case record.StatusExit:
		ns.status = NodeExited
	case record.StatusError:
		ns.status = NodeErrored
		ts.hasCriticalError = true
	}
	ns.lastStepID = stepID
	ts.lastStepID = stepID

	t.logger.Debug("step admitted",
		"trace", c.TraceID, "step", stepID, "node", node, "status", status)

	return c.Next(), nil
}

// Replay returns every record belonging to a trace: env record first, then
// step records in strictly increasing step order.
//
// Replay reads only the log and deliberately ignores the trace state table,
// so it keeps working for a trace whose state is gone but whose log entries
// remain. Unknown traces yield an empty slice, not an error.
func (t *Tracker) Replay(ctx context.Context, traceID string) ([]record.Record, error) {
	if traceID == "" {
		return nil, &GuardError{
			Code:    CodeInvalidArgument,
			Message: "trace id must be a non-empty string",
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.ReplayTrace(ctx, traceID)
}

// AllRecords returns a snapshot copy of the whole record log in append
// order. Mutating the returned slice does not affect tracker state.
func (t *Tracker) AllRecords(ctx context.Context) ([]record.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.AllRecords(ctx)
}

// ActiveTraces returns the trace ids currently in the state table, sorted
// for deterministic output.
func (t *Tracker) ActiveTraces() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.traces))
	for id := range t.traces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TraceSummary is the per-trace slice of Stats.
type TraceSummary struct {
	TraceID          string `json:"trace_id"`
	EnvID            string `json:"env_id"`
	Steps            int64  `json:"steps"`
	Nodes            int    `json:"nodes"`
	HasCriticalError bool   `json:"has_critical_error"`
}

// Stats is a read-only aggregation over the log and the state table.
type Stats struct {
	TotalRecords int64          `json:"total_records"`
	ActiveTraces int            `json:"active_traces"`
	Traces       []TraceSummary `json:"traces"`
}

// Stats reports totals and per-trace summaries. No guards; always succeeds
// apart from store read errors. Summaries are sorted by trace id.
func (t *Tracker) Stats(ctx context.Context) (Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	total, err := t.store.CountRecords(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	stats := Stats{
		TotalRecords: total,
		ActiveTraces: len(t.traces),
		Traces:       make([]TraceSummary, 0, len(t.traces)),
	}
	for id, ts := range t.traces {
		stats.Traces = append(stats.Traces, TraceSummary{
			TraceID:          id,
			EnvID:            ts.envID,
			Steps:            ts.lastStepID,
			Nodes:            len(ts.nodes),
			HasCriticalError: ts.hasCriticalError,
		})
	}
	sort.Slice(stats.Traces, func(i, j int) bool {
		return stats.Traces[i].TraceID < stats.Traces[j].TraceID
	})

	return stats, nil
}

// Clear destroys every trace state and empties the record log.
// Intended for test isolation; there is no per-trace clear.
func (t *Tracker) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear traces: %w", err)
	}
	t.traces = make(map[string]*traceState)
	t.logger.Debug("traces cleared")
	return nil
}
