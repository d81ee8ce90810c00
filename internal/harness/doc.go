// Package harness runs declarative trace scenarios against the tracker.
//
// A scenario is a YAML file describing an environment payload, a sequence
// of steps (each optionally expecting a specific guard rejection), and
// assertions over the resulting trace. Scenario files are validated against
// an embedded CUE schema before execution, so malformed files fail with a
// schema position instead of a confusing runtime error.
//
// Each scenario runs against a fresh in-memory record log with a fixed
// clock and sequential ids, so the same scenario always produces the same
// trace byte-for-byte. That determinism is what makes golden-file
// comparison (RunWithGolden) meaningful: the golden file is the source of
// truth for expected trace output, regenerated with:
//
//	go test ./internal/harness -update
package harness
