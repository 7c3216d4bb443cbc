package secondary

import "context"

// PreferenceStore is durable local key/value state: the last-preview
// slot, auto-apply settings, and scoring-weight overrides. Pure
// storage, atomic replace per key, no logic.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Queued write states.
const (
	QueueStatePending = "pending"
	QueueStateFailed  = "failed"
)

// Queued write operations.
const (
	QueueOpCreate = "create"
	QueueOpUpdate = "update"
)

// QueuedWrite is one pending external-write intent captured while the
// remote system was unreachable. Payload is the JSON-encoded write.
type QueuedWrite struct {
	ID         string // ULID, doubles as the create client token
	Target     string // "workspace"
	Operation  string // QueueOpCreate or QueueOpUpdate
	TargetID   string // empty for creates
	Payload    string
	EnqueuedAt string
	RetryCount int
	State      string
}

// WriteQueue is the append-only offline queue. Enqueue must reach
// durable storage before returning; entries leave the queue only via
// Ack (remote acknowledged) or Fail (permanent failure, kept for
// inspection).
type WriteQueue interface {
	Enqueue(ctx context.Context, write *QueuedWrite) error

	// Pending returns pending entries in FIFO replay order.
	Pending(ctx context.Context) ([]*QueuedWrite, error)

	// All returns every entry, pending first, for operator inspection.
	All(ctx context.Context) ([]*QueuedWrite, error)

	// Ack removes an entry after the remote acknowledged the write.
	Ack(ctx context.Context, id string) error

	// Requeue moves an entry to the tail with an incremented retry count.
	Requeue(ctx context.Context, id string) error

	// Fail marks an entry permanently failed.
	Fail(ctx context.Context, id, reason string) error
}

// Audit outcomes.
const (
	AuditOutcomePending = "pending"
	AuditOutcomeApplied = "applied"
	AuditOutcomeQueued  = "queued"
	AuditOutcomeFailed  = "failed"
)

// AuditEntry records one apply attempt. It is appended before the
// network call so intent survives a crash mid-write.
type AuditEntry struct {
	ID           string
	InvocationID string
	Action       string
	TargetID     string
	Payload      string
	Outcome      string
	CreatedAt    string
}

// AuditLog is the durable at-least-once record of apply attempts.
type AuditLog interface {
	Append(ctx context.Context, entry *AuditEntry) error
	SetOutcome(ctx context.Context, id, outcome string) error
}

// MirrorSnapshot is the local read mirror of the workspace database.
type MirrorSnapshot struct {
	SyncedAt string           `json:"synced_at"`
	Count    int              `json:"count"`
	Requests []*RequestRecord `json:"requests"`
}

// MirrorStore persists the mirror snapshot with atomic replace.
type MirrorStore interface {
	SaveMirror(snapshot *MirrorSnapshot) error
	LoadMirror() (*MirrorSnapshot, bool, error)
}

// ReportWriter persists dated triage reports and returns the written
// path.
type ReportWriter interface {
	WriteReport(name, content string) (string, error)
}
