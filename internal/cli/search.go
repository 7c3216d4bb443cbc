package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/wire"
)

// SearchCmd returns the search command.
func SearchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search friction requests by title and description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := wire.RouterService().Route(cmd.Context(), primary.Instruction{
				Text: "search " + strings.Join(args, " "),
			})
			return finish(env, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope as JSON")
	return cmd
}
