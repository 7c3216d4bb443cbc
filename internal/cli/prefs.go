package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/aide/internal/wire"
)

// PrefsCmd returns the prefs command group.
func PrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show and set operator preferences",
	}
	cmd.AddCommand(prefsShowCmd())
	cmd.AddCommand(prefsSetCmd())
	return cmd
}

func prefsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := wire.PrefsService().Show(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load preferences: %w", err)
			}
			if asJSON {
				data, err := json.MarshalIndent(prefs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			printPrefs(prefs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print preferences as JSON")
	return cmd
}

func prefsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set one preference",
		Long: `Set an operator preference.

Keys:
  auto_apply_enabled     true or false
  auto_apply_threshold   confidence floor in [0,1]
  impact_weight          positive scoring weight
  frequency_weight       positive scoring weight
  recency_weight         positive scoring weight

Examples:
  aide prefs set auto_apply_enabled true
  aide prefs set auto_apply_threshold 0.85`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.PrefsService().Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("✓ %s = %s\n", args[0], args[1])
			return nil
		},
	}
}
