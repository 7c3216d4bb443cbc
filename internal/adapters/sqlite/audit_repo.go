package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/aide/internal/ports/secondary"
)

// AuditRepository implements secondary.AuditLog with SQLite.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new SQLite audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append stores an entry. An empty CreatedAt is filled with the current
// time; an empty Outcome defaults to pending.
func (r *AuditRepository) Append(ctx context.Context, entry *secondary.AuditEntry) error {
	createdAt := entry.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}
	outcome := entry.Outcome
	if outcome == "" {
		outcome = secondary.AuditOutcomePending
	}

	var targetID sql.NullString
	if entry.TargetID != "" {
		targetID = sql.NullString{String: entry.TargetID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit (id, invocation_id, action, target_id, payload, outcome, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.ID, entry.InvocationID, entry.Action, targetID, entry.Payload, outcome, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// SetOutcome resolves a previously appended entry.
func (r *AuditRepository) SetOutcome(ctx context.Context, id, outcome string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE audit SET outcome = ? WHERE id = ?", outcome, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set audit outcome: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("audit entry %s not found", id)
	}
	return nil
}
