package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/aide/internal/config"
	"github.com/example/aide/internal/db"
)

// InitCmd returns the init command.
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the aide home directory and database",
		Long:  `Create ~/.aide, initialize the local database, and write a starter config.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing aide database at %s\n", dbPath)
			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			fmt.Println("✓ Database initialized")

			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  set workspace_url and workspace_db_id in config.json")
			fmt.Println("  export AIDE_WORKSPACE_TOKEN=...")
			fmt.Println("  aide sync")
			fmt.Println("  aide capture \"something that keeps costing me time\"")
			return nil
		},
	}
}

// initConfig writes a starter config.json unless one already exists.
func initConfig() error {
	dir, err := config.Home()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("✓ Config already exists at %s\n", path)
		return nil
	}

	if err := config.Save(&config.Config{Version: "1"}); err != nil {
		return err
	}
	fmt.Printf("✓ Starter config written to %s\n", path)
	return nil
}
