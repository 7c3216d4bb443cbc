package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/wire"
)

// CaptureCmd returns the capture command.
func CaptureCmd() *cobra.Command {
	var (
		outcome   string
		frequency string
		impact    string
		domains   []string
		source    string
		link      string
		notes     string
		execute   bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "capture [complaint]",
		Short: "Capture a friction request",
		Long: `Record something that repeatedly costs time or attention.

Examples:
  aide capture "renewing the car registration takes forever"
  aide capture "inbox full of receipts" --frequency daily --impact medium --domain email --execute`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := wire.CaptureService().Capture(cmd.Context(), primary.CaptureRequest{
				Complaint:      strings.Join(args, " "),
				DesiredOutcome: outcome,
				Frequency:      frequency,
				Impact:         impact,
				Domains:        domains,
				Source:         source,
				Link:           link,
				Notes:          notes,
				Execute:        execute,
			})
			return finish(env, asJSON)
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "", "desired outcome (inferred when omitted)")
	cmd.Flags().StringVar(&frequency, "frequency", "", "once, weekly, daily, or many-times-per-day")
	cmd.Flags().StringVar(&impact, "impact", "", "low, medium, or high")
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "domain tags (repeatable)")
	cmd.Flags().StringVar(&source, "source", "", "where this came from (defaults to cli)")
	cmd.Flags().StringVar(&link, "link", "", "related link")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&execute, "execute", false, "create the record instead of previewing it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope as JSON")
	return cmd
}
