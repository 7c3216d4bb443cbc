// Package sqlite contains SQLite implementations of the local durable
// state interfaces: preferences, offline queue, and audit trail.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// PreferenceRepository implements secondary.PreferenceStore with SQLite.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new SQLite preference repository.
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the value for key, with ok=false when the key is absent.
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE key = ?", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, true, nil
}

// Set atomically replaces the value for key.
func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *PreferenceRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}
