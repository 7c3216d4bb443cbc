// Package filesystem persists the workspace read mirror and triage
// reports under the aide home directory.
package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/example/aide/internal/ports/secondary"
)

const (
	mirrorFile = "mirror.json"
	reportsDir = "triage"
)

// Store implements secondary.MirrorStore and secondary.ReportWriter on
// an afero filesystem. Tests use afero.NewMemMapFs.
type Store struct {
	fs   afero.Fs
	home string
}

// NewStore creates a store rooted at home.
func NewStore(fs afero.Fs, home string) *Store {
	return &Store{fs: fs, home: home}
}

// SaveMirror atomically replaces the mirror snapshot: write to a temp
// file, then rename over the old snapshot so readers never observe a
// partial file.
func (s *Store) SaveMirror(snapshot *secondary.MirrorSnapshot) error {
	if err := s.fs.MkdirAll(s.home, 0755); err != nil {
		return fmt.Errorf("failed to create aide dir: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mirror: %w", err)
	}

	target := filepath.Join(s.home, mirrorFile)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write mirror: %w", err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace mirror: %w", err)
	}
	return nil
}

// LoadMirror reads the snapshot, with ok=false when none exists yet.
func (s *Store) LoadMirror() (*secondary.MirrorSnapshot, bool, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.home, mirrorFile))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read mirror: %w", err)
	}

	snapshot := &secondary.MirrorSnapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, false, fmt.Errorf("failed to parse mirror: %w", err)
	}
	return snapshot, true, nil
}

// WriteReport stores a dated triage report and returns its path.
func (s *Store) WriteReport(name, content string) (string, error) {
	dir := filepath.Join(s.home, reportsDir)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := afero.WriteFile(s.fs, path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
