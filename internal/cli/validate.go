package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/formflow/schema"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema.cue>",
		Short: "Validate a CUE field schema",
		Long: `Compile a CUE field schema and report the fields it declares.

Example:
  formflow validate ./fields.cue
  formflow validate ./fields.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := schema.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "schema validation failed", err)
			}

			p := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if p.Format == "json" {
				out := make([]map[string]any, len(defs))
				for i, d := range defs {
					out[i] = map[string]any{
						"name":    d.Name,
						"type":    d.Type,
						"default": d.Default,
					}
				}
				return p.JSON(map[string]any{"schema": args[0], "fields": out})
			}

			p.Textf("schema %s: %d fields", args[0], len(defs))
			for _, d := range defs {
				p.Textf("  %-20s %-8s default=%v", d.Name, d.Type, d.Default)
			}
			return nil
		},
	}
}
