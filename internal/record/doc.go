// Package record defines the data model for execution traces.
//
// A trace is one logical execution flow. It starts with a single EnvRecord
// capturing the environment the flow was created under, followed by zero or
// more StepRecords, one per admitted step. Records are immutable once
// appended; replay reads them back in admission order.
//
// Context is the caller-held proof-of-position token. It is a plain value
// type passed and returned by value, so a caller holding a stale Context
// cannot affect tracker state by mutating its copy.
//
// Canonical JSON serialization (sorted keys, NFC-normalized strings, no HTML
// escaping) is provided for deterministic trace snapshots and golden file
// comparison.
package record
