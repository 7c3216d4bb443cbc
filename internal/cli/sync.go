package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/aide/internal/wire"
)

// SyncCmd returns the sync command.
func SyncCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local mirror from the workspace",
		Long: `Fetch the full remote backlog and atomically replace the local
mirror. Search, backlog, and triage fall back to the mirror whenever
the workspace is unreachable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return finish(wire.SyncService().Sync(cmd.Context()), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope as JSON")
	return cmd
}
