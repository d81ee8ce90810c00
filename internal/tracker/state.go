package tracker

// NodeStatus is a node's position in its per-trace state machine.
type NodeStatus string

const (
	// NodeIdle: never entered (the lazy-creation default).
	NodeIdle NodeStatus = "idle"

	// NodeEntered: inside the node, exit or error expected.
	NodeEntered NodeStatus = "entered"

	// NodeExited: cleanly exited; the node may be re-entered.
	NodeExited NodeStatus = "exited"

	// NodeErrored: terminal for the node, and for the trace as a whole.
	NodeErrored NodeStatus = "errored"
)

// nodeState tracks one named node within a trace.
type nodeState struct {
	status     NodeStatus
	lastStepID int64
}

// traceState is the mutable server-side state for one trace.
// Created by CreateEnv, mutated only by Step, destroyed only by Clear.
type traceState struct {
	envID            string
	lastStepID       int64
	hasCriticalError bool
	nodes            map[string]*nodeState
}

func newTraceState(envID string) *traceState {
	return &traceState{
		envID: envID,
		nodes: make(map[string]*nodeState),
	}
}

// node returns the state for a node name, creating it lazily in idle.
// Node states are never destroyed individually; only the whole trace state
// is discarded on clear.
func (ts *traceState) node(name string) *nodeState {
	ns, ok := ts.nodes[name]
	if !ok {
		ns = &nodeState{status: NodeIdle, lastStepID: -1}
		ts.nodes[name] = ns
	}
	return ns
}
