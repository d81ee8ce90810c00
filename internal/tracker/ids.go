package tracker

import "github.com/google/uuid"

// Generator allocates globally-unique trace and environment ids.
// Implemented by UUIDv7Generator (production) and testutil.FixedGenerator
// (deterministic tests and golden traces).
type Generator interface {
	NewTraceID() string
	NewEnvID() string
}

// UUIDv7Generator allocates time-sortable UUIDv7 ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, making ids
// sortable by creation time, which helps when eyeballing log dumps.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewTraceID returns a fresh UUIDv7 string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewTraceID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewEnvID returns a fresh UUIDv7 string.
func (UUIDv7Generator) NewEnvID() string {
	return uuid.Must(uuid.NewV7()).String()
}
