package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retraceio/retrace/internal/record"
	"github.com/retraceio/retrace/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	TraceID  string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded traces from a log file",
		Long: `Replay the recorded steps of traces from a SQLite log file.

Replay reads from the append-only log alone: it works on logs whose
in-memory trace state is long gone. Without --trace, every trace in the
log is replayed in order of first appearance.

Examples:
  retrace replay --db /tmp/trace.db
  retrace replay --db /tmp/trace.db --trace 0190a6e2-...
  retrace replay --db /tmp/trace.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite log file to replay from (required)")
	cmd.Flags().StringVar(&opts.TraceID, "trace", "", "replay only the given trace")
	cmd.MarkFlagRequired("db")

	return cmd
}

// replayedTrace is one trace in the replay output.
type replayedTrace struct {
	TraceID string          `json:"trace_id"`
	Records []record.Record `json:"records"`
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var traceIDs []string
	if opts.TraceID != "" {
		traceIDs = []string{opts.TraceID}
	} else {
		traceIDs, err = st.TraceIDs(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list traces", err)
		}
	}

	var traces []replayedTrace
	for _, id := range traceIDs {
		records, err := st.ReplayTrace(ctx, id)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay trace %s", id), err)
		}
		if len(records) == 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown trace %s", id))
		}
		traces = append(traces, replayedTrace{TraceID: id, Records: records})
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		if err := out.PrintJSON(traces); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode traces", err)
		}
		return nil
	}

	for _, t := range traces {
		out.Printf("trace %s\n", t.TraceID)
		for _, r := range t.Records {
			switch r.Kind {
			case record.KindEnv:
				out.Printf("  env   %s source=%s\n", r.Env.EnvID, r.Env.Source)
			case record.KindStep:
				out.Printf("  step  %-4d %-6s %s\n", r.Step.StepID, r.Step.Status, r.Step.Node)
			}
		}
	}
	return nil
}
