package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/retraceio/retrace/internal/harness"
	"github.com/retraceio/retrace/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run trace scenarios",
		Long: `Run one or more trace scenario files against the tracker.

By default each scenario runs deterministically against a fresh in-memory
record log. With --db, all scenarios run into a shared SQLite log file that
the replay and stats commands can inspect afterwards.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (file not found, invalid scenario, etc.)

Examples:
  retrace run scenario.yaml
  retrace run --format json scenarios/*.yaml
  retrace run --db /tmp/trace.db scenario.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record into a SQLite log file instead of memory")

	return cmd
}

// runResult is the per-scenario slice of the run output.
type runResult struct {
	Scenario string   `json:"scenario"`
	Pass     bool     `json:"pass"`
	TraceID  string   `json:"trace_id"`
	Steps    int      `json:"steps"`
	Errors   []string `json:"errors,omitempty"`
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	// With --db all scenarios share one log; without it each scenario gets
	// its own in-memory log via harness.Run.
	var shared *store.Store
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		shared = st
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	var results []runResult
	allPass := true

	for _, path := range paths {
		scenario, err := harness.Load(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", path), err)
		}

		var result *harness.Result
		if shared != nil {
			result, err = harness.RunWith(shared, scenario)
		} else {
			result, err = harness.Run(scenario)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to run %s", scenario.Name), err)
		}

		if !result.Pass {
			allPass = false
		}
		results = append(results, runResult{
			Scenario: scenario.Name,
			Pass:     result.Pass,
			TraceID:  result.TraceID,
			Steps:    len(result.Trace) - 1,
			Errors:   result.Errors,
		})
	}

	if opts.Format == "json" {
		if err := out.PrintJSON(results); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode results", err)
		}
	} else {
		for _, r := range results {
			status := "PASS"
			if !r.Pass {
				status = "FAIL"
			}
			out.Printf("%s  %s (trace=%s, steps=%d)\n", status, r.Scenario, r.TraceID, r.Steps)
			for _, e := range r.Errors {
				out.Printf("  - %s\n", e)
			}
		}
	}

	if !allPass {
		return NewExitError(ExitFailure, "one or more scenarios failed")
	}
	return nil
}

// configureLogging sets the default slog handler based on verbosity.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
