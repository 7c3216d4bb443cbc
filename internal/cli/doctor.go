package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/example/aide/internal/config"
	"github.com/example/aide/internal/db"
)

// CheckResult represents the outcome of a single check.
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation.
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the aide environment",
		Long: `Environment health check for aide.

Validates:
- Home directory and database
- Workspace configuration (URL, database ID, token)
- Local mirror freshness
- Offline queue backlog

Examples:
  aide doctor
  aide doctor --quiet    # exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkHome(),
				checkDatabase(),
				checkWorkspaceConfig(),
				checkMirror(),
				checkQueueBacklog(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
				}
				if quiet {
					continue
				}
				fmt.Printf("%s %s\n", r.Status, r.Name)
				if r.Status != "✓" && r.Details != "" {
					fmt.Printf("    %s\n", r.Details)
				}
			}

			if hasErrors {
				return ErrFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "exit code only, no output")
	return cmd
}

func checkHome() CheckResult {
	home, err := config.Home()
	if err != nil {
		return CheckResult{Name: "home directory", Status: "✗", Details: err.Error()}
	}
	if _, err := os.Stat(home); os.IsNotExist(err) {
		return CheckResult{Name: "home directory", Status: "✗",
			Details: fmt.Sprintf("%s does not exist; run `aide init`", home)}
	}
	return CheckResult{Name: "home directory", Status: "✓"}
}

func checkDatabase() CheckResult {
	path, err := db.GetDBPath()
	if err != nil {
		return CheckResult{Name: "database", Status: "✗", Details: err.Error()}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{Name: "database", Status: "✗",
			Details: fmt.Sprintf("%s does not exist; run `aide init`", path)}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return CheckResult{Name: "database", Status: "✗", Details: err.Error()}
	}
	defer conn.Close()

	var count int
	err = conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('preferences','queue','audit')").Scan(&count)
	if err != nil || count != 3 {
		return CheckResult{Name: "database", Status: "✗",
			Details: "schema incomplete; run `aide init`"}
	}
	return CheckResult{Name: "database", Status: "✓"}
}

func checkWorkspaceConfig() CheckResult {
	cfg, err := config.Load()
	if err != nil {
		return CheckResult{Name: "workspace config", Status: "✗", Details: err.Error()}
	}

	var missing []string
	if cfg.WorkspaceURL == "" {
		missing = append(missing, "workspace_url")
	}
	if cfg.WorkspaceDBID == "" {
		missing = append(missing, "workspace_db_id")
	}
	if cfg.WorkspaceToken == "" {
		missing = append(missing, "AIDE_WORKSPACE_TOKEN")
	}
	if len(missing) > 0 {
		return CheckResult{Name: "workspace config", Status: "✗",
			Details: fmt.Sprintf("missing: %v", missing)}
	}
	return CheckResult{Name: "workspace config", Status: "✓"}
}

func checkMirror() CheckResult {
	home, err := config.Home()
	if err != nil {
		return CheckResult{Name: "local mirror", Status: "✗", Details: err.Error()}
	}
	if _, err := os.Stat(filepath.Join(home, "mirror.json")); os.IsNotExist(err) {
		return CheckResult{Name: "local mirror", Status: "⚠",
			Details: "no mirror yet; run `aide sync` to enable offline reads"}
	}
	return CheckResult{Name: "local mirror", Status: "✓"}
}

func checkQueueBacklog() CheckResult {
	path, err := db.GetDBPath()
	if err != nil {
		return CheckResult{Name: "offline queue", Status: "✗", Details: err.Error()}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{Name: "offline queue", Status: "⚠", Details: "database not initialized"}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return CheckResult{Name: "offline queue", Status: "✗", Details: err.Error()}
	}
	defer conn.Close()

	var pending, failed int
	if err := conn.QueryRow("SELECT COUNT(*) FROM queue WHERE state='pending'").Scan(&pending); err != nil {
		return CheckResult{Name: "offline queue", Status: "⚠", Details: "queue table missing; run `aide init`"}
	}
	conn.QueryRow("SELECT COUNT(*) FROM queue WHERE state='failed'").Scan(&failed)

	switch {
	case failed > 0:
		return CheckResult{Name: "offline queue", Status: "✗",
			Details: fmt.Sprintf("%d permanently failed writes; inspect with `aide queue list`", failed)}
	case pending > 0:
		return CheckResult{Name: "offline queue", Status: "⚠",
			Details: fmt.Sprintf("%d pending writes; run `aide queue flush`", pending)}
	default:
		return CheckResult{Name: "offline queue", Status: "✓"}
	}
}
