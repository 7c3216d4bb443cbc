package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/aide/internal/ports/secondary"
)

// QueueRepository implements secondary.WriteQueue with SQLite. FIFO
// order comes from the autoincrement seq column; Requeue moves an entry
// to the tail by reinserting it with a fresh seq.
type QueueRepository struct {
	db *sql.DB
}

// NewQueueRepository creates a new SQLite queue repository.
func NewQueueRepository(db *sql.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

const queueSelectCols = "id, target, operation, target_id, payload, enqueued_at, retry_count, state"

func scanQueuedWrite(scanner interface {
	Scan(dest ...any) error
}) (*secondary.QueuedWrite, error) {
	var targetID sql.NullString
	write := &secondary.QueuedWrite{}
	err := scanner.Scan(
		&write.ID, &write.Target, &write.Operation, &targetID,
		&write.Payload, &write.EnqueuedAt, &write.RetryCount, &write.State,
	)
	if err != nil {
		return nil, err
	}
	write.TargetID = targetID.String
	return write, nil
}

// Enqueue appends a pending write. It returns only after the row is
// durably stored; callers may then report the operation as "queued".
func (r *QueueRepository) Enqueue(ctx context.Context, write *secondary.QueuedWrite) error {
	var targetID sql.NullString
	if write.TargetID != "" {
		targetID = sql.NullString{String: write.TargetID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO queue (id, target, operation, target_id, payload, enqueued_at, retry_count, state) VALUES (?, ?, ?, ?, ?, ?, ?, 'pending')",
		write.ID, write.Target, write.Operation, targetID, write.Payload, write.EnqueuedAt, write.RetryCount,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue write: %w", err)
	}
	return nil
}

// Pending returns pending entries in FIFO replay order.
func (r *QueueRepository) Pending(ctx context.Context) ([]*secondary.QueuedWrite, error) {
	return r.list(ctx, "SELECT "+queueSelectCols+" FROM queue WHERE state = 'pending' ORDER BY seq")
}

// All returns every entry for operator inspection, pending first.
func (r *QueueRepository) All(ctx context.Context) ([]*secondary.QueuedWrite, error) {
	return r.list(ctx, "SELECT "+queueSelectCols+" FROM queue ORDER BY state DESC, seq")
}

func (r *QueueRepository) list(ctx context.Context, query string) ([]*secondary.QueuedWrite, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer rows.Close()

	var writes []*secondary.QueuedWrite
	for rows.Next() {
		write, err := scanQueuedWrite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		writes = append(writes, write)
	}
	return writes, rows.Err()
}

// Ack removes an entry after the remote acknowledged the write.
func (r *QueueRepository) Ack(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM queue WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to ack queue entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("queue entry %s not found", id)
	}
	return nil
}

// Requeue moves an entry to the tail with an incremented retry count.
func (r *QueueRepository) Requeue(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin requeue: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+queueSelectCols+" FROM queue WHERE id = ?", id)
	write, err := scanQueuedWrite(row)
	if err == sql.ErrNoRows {
		return fmt.Errorf("queue entry %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to load queue entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM queue WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}

	var targetID sql.NullString
	if write.TargetID != "" {
		targetID = sql.NullString{String: write.TargetID, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO queue (id, target, operation, target_id, payload, enqueued_at, retry_count, state) VALUES (?, ?, ?, ?, ?, ?, ?, 'pending')",
		write.ID, write.Target, write.Operation, targetID, write.Payload, write.EnqueuedAt, write.RetryCount+1,
	)
	if err != nil {
		return fmt.Errorf("failed to requeue entry: %w", err)
	}

	return tx.Commit()
}

// Fail marks an entry permanently failed, keeping it for inspection.
func (r *QueueRepository) Fail(ctx context.Context, id, reason string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE queue SET state = 'failed', fail_reason = ? WHERE id = ?",
		reason, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark queue entry failed: %w", err)
	}
	return nil
}
