// Package secondary defines the outbound ports: interfaces the
// application core needs from external systems and local durable state.
package secondary

import (
	"context"
	"time"
)

// RequestRecord is the persistence-shaped friction request exchanged
// with the workspace database. Timestamps are RFC3339 strings; the
// application layer parses them into time.Time.
type RequestRecord struct {
	ID             string
	URL            string
	Title          string
	Description    string
	DesiredOutcome string
	Frequency      string
	Impact         string
	Domains        []string
	Status         string
	Source         string
	Link           string
	Notes          string
	CreatedAt      string
	UpdatedAt      string
}

// RequestFilter narrows a workspace query.
type RequestFilter struct {
	Statuses []string // empty means all
	Query    string   // free-text match on title/description
	Limit    int      // 0 means no limit
}

// Field names accepted by WorkspaceRepository.Update. Domains are
// comma-joined into FieldDomains.
const (
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldDesiredOutcome = "desired_outcome"
	FieldStatus         = "status"
	FieldFrequency      = "frequency"
	FieldImpact         = "impact"
	FieldDomains        = "domains"
	FieldNotes          = "notes"
)

// WorkspaceRepository is the hosted workspace database collaborator.
// Every method can fail with ErrUnreachable, ErrNotFound, or a
// RejectionError.
type WorkspaceRepository interface {
	// Query returns records matching the filter.
	Query(ctx context.Context, filter RequestFilter) ([]*RequestRecord, error)

	// Get returns one record by ID. Apply re-fetches through Get before
	// writing, so the diff shown at preview time is re-validated.
	Get(ctx context.Context, id string) (*RequestRecord, error)

	// Create inserts a new record. clientToken deduplicates replays: a
	// second Create with the same token must not produce a second record.
	Create(ctx context.Context, record *RequestRecord, clientToken string) (*RequestRecord, error)

	// Update writes the named fields, last-write-wins per field.
	Update(ctx context.Context, id string, fields map[string]string) (*RequestRecord, error)
}

// Event is a calendar entry used for duplicate-avoidance checks.
type Event struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
}

// CalendarReader is the calendar collaborator. aide never writes to the
// calendar; it only queries before proposing scheduling mutations.
type CalendarReader interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]Event, error)
}
