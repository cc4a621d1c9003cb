package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/formflow/form"
	"github.com/roach88/formflow/internal/harness"
	"github.com/roach88/formflow/journal"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a convergence scenario",
		Long: `Run a convergence scenario: seed the engine from the scenario's field
schema, commit each step, and print the resulting merge trace.

With --journal, every commit and merge is also appended to a SQLite
audit journal that the trace command can inspect later.

Example:
  formflow run ./scenario.yaml
  formflow run ./scenario.yaml --journal ./audit.db --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite audit journal (optional)")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	slog.Info("scenario loaded", "name", scenario.Name, "steps", len(scenario.Steps))

	var extra []form.Option
	if opts.Journal != "" {
		slog.Info("opening journal", "path", opts.Journal)
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		extra = append(extra, form.WithHistorySink(j))
	}

	result, err := harness.Run(scenario, extra...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario failed", err)
	}

	if err := scenario.Verify(result); err != nil {
		return WrapExitError(ExitFailure, "expectations not met", err)
	}

	p := &Printer{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if p.Format == "json" {
		return p.JSON(harness.Snapshot(scenario, result))
	}

	p.Textf("scenario %s: %d merges", scenario.Name, len(result.Merges))
	for _, m := range result.Merges {
		p.Textf("  run %s author=%s iterations=%d added=%d updated=%d removed=%d errors=%d",
			m.RunToken, m.Author, m.Iterations, len(m.Added), len(m.Updated), len(m.Removed), len(m.Errors))
	}
	p.Textf("final fields:")
	for _, f := range result.Fields.All() {
		p.Textf("  %-20s %v", f.ID, f.Value)
	}
	return nil
}
