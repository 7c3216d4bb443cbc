package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/aide/internal/wire"
)

// QueueCmd returns the queue command group.
func QueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and flush the offline write queue",
	}
	cmd.AddCommand(queueFlushCmd())
	cmd.AddCommand(queueListCmd())
	return cmd
}

func queueFlushCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Replay pending writes against the workspace",
		Long: `Deliver queued writes in FIFO order. Entries leave the queue only
when the workspace acknowledges them; transient failures requeue the
entry, permanent ones mark it failed for inspection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return finish(wire.QueueService().Flush(cmd.Context()), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope as JSON")
	return cmd
}

func queueListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued writes, pending first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return finish(wire.QueueService().List(cmd.Context()), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope as JSON")
	return cmd
}
