package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/formflow/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Run   string
	Limit int
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <journal.db>",
		Short: "Inspect an audit journal",
		Long: `Print the entries of a SQLite audit journal in append order.

Example:
  formflow trace ./audit.db
  formflow trace ./audit.db --run price-cascade-run-2 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return traceJournal(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Run, "run", "", "only entries for this run token")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to print (0 = all)")

	return cmd
}

func traceJournal(opts *TraceOptions, path string, cmd *cobra.Command) error {
	j, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	var entries []journal.Entry
	if opts.Run != "" {
		entries, err = j.RunEntries(ctx, opts.Run)
	} else {
		entries, err = j.Entries(ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	p := &Printer{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if p.Format == "json" {
		out := make([]map[string]any, len(entries))
		for i, e := range entries {
			out[i] = map[string]any{
				"seq":       e.Seq,
				"run":       e.RunToken,
				"kind":      e.Kind,
				"author":    e.Author,
				"payload":   e.Payload,
				"created_at": e.CreatedAt,
			}
		}
		return p.JSON(out)
	}

	p.Textf("journal %s: %d entries", path, len(entries))
	for _, e := range entries {
		p.Textf("  seq=%-4d %-6s run=%s author=%s %s", e.Seq, e.Kind, e.RunToken, e.Author, e.Payload)
	}
	return nil
}
