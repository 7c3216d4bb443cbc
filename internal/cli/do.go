package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/wire"
)

// DoCmd returns the do command, the free-form instruction entry point.
func DoCmd() *cobra.Command {
	var execute, autoApply, asJSON bool

	cmd := &cobra.Command{
		Use:   "do [instruction]",
		Short: "Route a free-form instruction",
		Long: `Classify a free-form instruction and run the matching action.

Mutations are previewed by default; pass --execute (or say "apply that"
afterwards) to actually write.

Examples:
  aide do "show backlog"
  aide do "i wish receipts filed themselves"
  aide do "change title 'Organic Bananas' to 'Bananas, Organic'"
  aide do "apply that"
  aide do "set status of 'Organic Bananas' to triaging" --execute`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := wire.RouterService().Route(cmd.Context(), primary.Instruction{
				Text:      strings.Join(args, " "),
				Execute:   execute,
				AutoApply: autoApply,
			})
			return finish(env, asJSON)
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "apply the mutation instead of previewing it")
	cmd.Flags().BoolVar(&autoApply, "auto-apply", false, "apply without --execute when confidence is high enough")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope as JSON")
	return cmd
}
