package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/wire"
)

// BacklogCmd returns the backlog command, a shorthand for the
// show-backlog route.
func BacklogCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "List open friction requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := wire.RouterService().Route(cmd.Context(), primary.Instruction{Text: "show backlog"})
			return finish(env, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope as JSON")
	return cmd
}
