package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config represents the flat aide configuration.
// File values come from ~/.aide/config.json; environment variables
// override file values so tokens can stay out of the config file.
type Config struct {
	Version        string `json:"version" env:"-"`
	WorkspaceURL   string `json:"workspace_url" env:"AIDE_WORKSPACE_URL"`
	WorkspaceToken string `json:"-" env:"AIDE_WORKSPACE_TOKEN"`
	WorkspaceDBID  string `json:"workspace_db_id" env:"AIDE_WORKSPACE_DB_ID"`
	CalendarURL    string `json:"calendar_url,omitempty" env:"AIDE_CALENDAR_URL"`
	CalendarID     string `json:"calendar_id,omitempty" env:"AIDE_CALENDAR_ID"`
	DeployCommand  string `json:"deploy_command,omitempty" env:"AIDE_DEPLOY_COMMAND"`
}

// Home returns the aide home directory. AIDE_HOME overrides the default
// ~/.aide for tests and alternate installs.
func Home() (string, error) {
	if custom := os.Getenv("AIDE_HOME"); custom != "" {
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".aide"), nil
}

// Load reads config.json from the aide home directory and applies the
// environment overlay. A missing file is not an error: env-only setups
// are valid and the caller decides which fields are required.
func Load() (*Config, error) {
	dir, err := Home()
	if err != nil {
		return nil, err
	}
	cfg := &Config{}

	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// Save writes config.json to the aide home directory.
func Save(cfg *Config) error {
	dir, err := Home()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create aide dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
