package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/retraceio/retrace/internal/store"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Database string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts and per-trace summaries",
		Long: `Show aggregate statistics for a SQLite log file: total record
count plus per-trace step counts, node counts, and error flags.

Examples:
  retrace stats --db /tmp/trace.db
  retrace stats --db /tmp/trace.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite log file to inspect (required)")
	cmd.MarkFlagRequired("db")

	return cmd
}

// statsOutput is the JSON shape of the stats command.
type statsOutput struct {
	Records int64                  `json:"records"`
	Traces  []store.TraceAggregate `json:"traces"`
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
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

	count, err := st.CountRecords(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count records", err)
	}
	aggregates, err := st.Aggregate(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to aggregate traces", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		if err := out.PrintJSON(statsOutput{Records: count, Traces: aggregates}); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode stats", err)
		}
		return nil
	}

	out.Printf("records: %d\n", count)
	out.Printf("traces:  %d\n", len(aggregates))
	for _, a := range aggregates {
		flag := ""
		if a.HasError {
			flag = "  [error]"
		}
		out.Printf("  %s  steps=%d nodes=%d%s\n", a.TraceID, a.Steps, a.Nodes, flag)
	}
	return nil
}
