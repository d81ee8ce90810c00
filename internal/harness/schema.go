package harness

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// validateScenario checks scenario YAML against the embedded CUE schema.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
func validateScenario(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Scenario"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parse scenario yaml: %w", err)
	}

	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return fmt.Errorf("build scenario: %w", err)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid scenario %s: %w", filename, err)
	}
	return nil
}
