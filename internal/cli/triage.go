package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/wire"
)

// TriageCmd returns the triage command.
func TriageCmd() *cobra.Command {
	var (
		limit           int
		apply           bool
		impactWeight    float64
		frequencyWeight float64
		recencyWeight   float64
		asJSON          bool
	)

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Score the backlog and write a dated report",
		Long: `Rank open friction requests by weighted impact, frequency, and
recency, cluster them into themes, and write a dated markdown report.

With --apply, selected items still in "new" advance to "triaging".

Examples:
  aide triage
  aide triage --limit 10 --apply
  aide triage --impact-weight 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := wire.TriageService().Triage(cmd.Context(), primary.TriageRequest{
				Limit:           limit,
				ImpactWeight:    impactWeight,
				FrequencyWeight: frequencyWeight,
				RecencyWeight:   recencyWeight,
				Apply:           apply,
			})
			return finish(env, asJSON)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "how many items to select (default 15)")
	cmd.Flags().BoolVar(&apply, "apply", false, "advance selected new items to triaging")
	cmd.Flags().Float64Var(&impactWeight, "impact-weight", 0, "override the impact weight")
	cmd.Flags().Float64Var(&frequencyWeight, "frequency-weight", 0, "override the frequency weight")
	cmd.Flags().Float64Var(&recencyWeight, "recency-weight", 0, "override the recency weight")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope as JSON")
	return cmd
}
