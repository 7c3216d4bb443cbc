// Package logging builds the file-backed zap logger used by services.
// Operator-facing output goes to stdout via the CLI layer; this logger
// records apply/flush/sync outcomes for later inspection.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// New creates a JSON logger writing to <home>/logs/aide.log.
func New(home string) (*zap.Logger, error) {
	dir := filepath.Join(home, "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "aide.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
