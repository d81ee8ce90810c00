package record

import "time"

// Status is the status reported for a step against a node.
type Status string

const (
	// StatusEnter marks entry into a node.
	StatusEnter Status = "enter"

	// StatusExit marks a successful exit from a node.
	StatusExit Status = "exit"

	// StatusError marks a failure inside a node. Recording it is a
	// successful call; it permanently closes the whole trace to new steps.
	StatusError Status = "error"
)

// Valid reports whether s is one of the three step statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusEnter, StatusExit, StatusError:
		return true
	default:
		return false
	}
}

// Kind distinguishes record types in the log.
type Kind string

const (
	// KindEnv is an environment-creation record, first record of a trace.
	KindEnv Kind = "env"

	// KindStep is a step record.
	KindStep Kind = "step"
)

// Context is the immutable capability token threaded by the caller between
// step calls. It proves the caller is operating against a specific trace
// lineage at a specific position.
//
// StepID equals the count of steps successfully admitted so far for the
// trace. Each successful step returns a fresh Context with StepID+1; the
// caller must present that Context on the next call. Presenting a stale one
// is rejected as out of sequence, which makes forked or reordered control
// flow structurally visible.
//
// Context is a value type: possessing a structurally valid Context is
// necessary but not sufficient to admit a step (it must also match live
// tracker state).
type Context struct {
	TraceID string `json:"trace_id"`
	EnvID   string `json:"env_id"`
	StepID  int64  `json:"step_id"`
}

// Next returns the Context for the position after one more admitted step.
func (c Context) Next() Context {
	return Context{TraceID: c.TraceID, EnvID: c.EnvID, StepID: c.StepID + 1}
}

// EnvRecord captures the environment a trace was created under.
// Created exactly once per trace, immutable thereafter.
type EnvRecord struct {
	TraceID   string         `json:"trace_id"`
	EnvID     string         `json:"env_id"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Payload   map[string]any `json:"payload"`
}

// StepRecord captures one admitted step of a trace.
// StepID values for a trace form a dense sequence starting at 1.
type StepRecord struct {
	TraceID   string         `json:"trace_id"`
	EnvID     string         `json:"env_id"`
	StepID    int64          `json:"step_id"`
	Timestamp time.Time      `json:"timestamp"`
	Node      string         `json:"node"`
	Status    Status         `json:"status"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Record wraps either an EnvRecord or a StepRecord for heterogeneous log
// reads. Exactly one of Env and Step is non-nil, matching Kind.
//
// Seq is the log-assigned append position, used only for ordering reads;
// callers should order steps by StepID.
type Record struct {
	Kind Kind  `json:"kind"`
	Seq  int64 `json:"seq"`

	Env  *EnvRecord  `json:"env,omitempty"`
	Step *StepRecord `json:"step,omitempty"`
}

// TraceID returns the trace the record belongs to.
func (r Record) TraceID() string {
	switch r.Kind {
	case KindEnv:
		if r.Env != nil {
			return r.Env.TraceID
		}
	case KindStep:
		if r.Step != nil {
			return r.Step.TraceID
		}
	}
	return ""
}

// AsPayload validates an environment payload: it must be a non-nil
// structured object. Primitives, nil, and typed nils are all rejected.
func AsPayload(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}
