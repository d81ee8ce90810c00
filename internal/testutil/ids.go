package testutil

import (
	"fmt"
	"sync"
)

// FixedGenerator allocates sequential, human-readable trace and env ids
// ("trace-0001", "env-0001", ...). It satisfies tracker.Generator and makes
// golden trace output stable across runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	traces int
	envs   int
}

// NewFixedGenerator creates a generator starting both sequences at 1.
func NewFixedGenerator() *FixedGenerator {
	return &FixedGenerator{}
}

// NewTraceID returns the next sequential trace id.
func (g *FixedGenerator) NewTraceID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.traces++
	return fmt.Sprintf("trace-%04d", g.traces)
}

// NewEnvID returns the next sequential env id.
func (g *FixedGenerator) NewEnvID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.envs++
	return fmt.Sprintf("env-%04d", g.envs)
}
