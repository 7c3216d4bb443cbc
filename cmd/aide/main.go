package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/aide/internal/cli"
	"github.com/example/aide/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "aide",
		Short:   "aide - personal automation command layer",
		Version: version.String(),
		Long: `aide routes free-form instructions onto a closed set of actions over
your friction-request backlog: capture, search, triage, and safe,
previewed edits against the hosted workspace database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.DoCmd())
	rootCmd.AddCommand(cli.CaptureCmd())
	rootCmd.AddCommand(cli.TriageCmd())
	rootCmd.AddCommand(cli.BacklogCmd())
	rootCmd.AddCommand(cli.SearchCmd())
	rootCmd.AddCommand(cli.SyncCmd())
	rootCmd.AddCommand(cli.QueueCmd())
	rootCmd.AddCommand(cli.PrefsCmd())

	if err := rootCmd.Execute(); err != nil {
		// Envelope failures already printed their errors.
		if !errors.Is(err, cli.ErrFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
