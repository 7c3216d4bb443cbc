package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/aide/internal/ports/secondary"
)

// mockWorkspace is an in-memory WorkspaceRepository. Set unreachable to
// simulate a network partition (or unreachableIDs to partition single
// targets); set rejectMsg to reject writes; set queryResults to serve a
// fixed, possibly stale, query response.
type mockWorkspace struct {
	records        map[string]*secondary.RequestRecord
	unreachable    bool
	unreachableIDs map[string]bool
	rejectMsg      string
	queryResults   []*secondary.RequestRecord
	nextID         int

	queryCalls  int
	getCalls    int
	createCalls []string // idempotency tokens, in call order
	tokenToID   map[string]string
	updateCalls []mockUpdate
}

type mockUpdate struct {
	ID     string
	Fields map[string]string
}

func newMockWorkspace(records ...*secondary.RequestRecord) *mockWorkspace {
	m := &mockWorkspace{
		records:   map[string]*secondary.RequestRecord{},
		tokenToID: map[string]string{},
	}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return m
}

func (m *mockWorkspace) Query(ctx context.Context, filter secondary.RequestFilter) ([]*secondary.RequestRecord, error) {
	m.queryCalls++
	if m.unreachable {
		return nil, secondary.ErrUnreachable
	}
	if m.queryResults != nil {
		return m.queryResults, nil
	}

	statuses := map[string]bool{}
	for _, s := range filter.Statuses {
		statuses[s] = true
	}
	needle := strings.ToLower(filter.Query)

	var out []*secondary.RequestRecord
	for _, r := range m.records {
		if len(statuses) > 0 && !statuses[r.Status] {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.Title+" "+r.Description), needle) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockWorkspace) Get(ctx context.Context, id string) (*secondary.RequestRecord, error) {
	m.getCalls++
	if m.unreachable {
		return nil, secondary.ErrUnreachable
	}
	r, ok := m.records[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *mockWorkspace) Create(ctx context.Context, record *secondary.RequestRecord, clientToken string) (*secondary.RequestRecord, error) {
	if m.unreachable {
		return nil, secondary.ErrUnreachable
	}
	if m.rejectMsg != "" {
		return nil, &secondary.RejectionError{Status: 422, Message: m.rejectMsg}
	}

	m.createCalls = append(m.createCalls, clientToken)

	// Idempotent replay: a token seen before returns the existing record.
	if id, ok := m.tokenToID[clientToken]; ok {
		copied := *m.records[id]
		return &copied, nil
	}

	m.nextID++
	copied := *record
	copied.ID = fmt.Sprintf("REQ-%d", m.nextID)
	copied.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	m.records[copied.ID] = &copied
	m.tokenToID[clientToken] = copied.ID
	returned := copied
	return &returned, nil
}

func (m *mockWorkspace) Update(ctx context.Context, id string, fields map[string]string) (*secondary.RequestRecord, error) {
	if m.unreachable || m.unreachableIDs[id] {
		return nil, secondary.ErrUnreachable
	}
	if m.rejectMsg != "" {
		return nil, &secondary.RejectionError{Status: 422, Message: m.rejectMsg}
	}
	r, ok := m.records[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}

	m.updateCalls = append(m.updateCalls, mockUpdate{ID: id, Fields: fields})
	for field, value := range fields {
		switch field {
		case secondary.FieldTitle:
			r.Title = value
		case secondary.FieldDescription:
			r.Description = value
		case secondary.FieldStatus:
			r.Status = value
		case secondary.FieldNotes:
			r.Notes = value
		case secondary.FieldDomains:
			r.Domains = strings.Split(value, ",")
		}
	}
	r.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	copied := *r
	return &copied, nil
}

// mockPrefs is an in-memory PreferenceStore.
type mockPrefs struct {
	values map[string]string
}

func newMockPrefs() *mockPrefs {
	return &mockPrefs{values: map[string]string{}}
}

func (m *mockPrefs) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockPrefs) Set(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *mockPrefs) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

// mockQueue is an in-memory WriteQueue preserving FIFO order.
type mockQueue struct {
	entries []*secondary.QueuedWrite
}

func (m *mockQueue) Enqueue(ctx context.Context, write *secondary.QueuedWrite) error {
	copied := *write
	copied.State = secondary.QueueStatePending
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockQueue) Pending(ctx context.Context) ([]*secondary.QueuedWrite, error) {
	var out []*secondary.QueuedWrite
	for _, e := range m.entries {
		if e.State == secondary.QueueStatePending {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockQueue) All(ctx context.Context) ([]*secondary.QueuedWrite, error) {
	out := make([]*secondary.QueuedWrite, len(m.entries))
	for i, e := range m.entries {
		copied := *e
		out[i] = &copied
	}
	return out, nil
}

func (m *mockQueue) Ack(ctx context.Context, id string) error {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("queue entry %s not found", id)
}

func (m *mockQueue) Requeue(ctx context.Context, id string) error {
	for i, e := range m.entries {
		if e.ID == id {
			moved := *e
			moved.RetryCount++
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			m.entries = append(m.entries, &moved)
			return nil
		}
	}
	return fmt.Errorf("queue entry %s not found", id)
}

func (m *mockQueue) Fail(ctx context.Context, id, reason string) error {
	for _, e := range m.entries {
		if e.ID == id {
			e.State = secondary.QueueStateFailed
			return nil
		}
	}
	return fmt.Errorf("queue entry %s not found", id)
}

// mockAudit records appended entries and outcome changes.
type mockAudit struct {
	entries []*secondary.AuditEntry
}

func (m *mockAudit) Append(ctx context.Context, entry *secondary.AuditEntry) error {
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockAudit) SetOutcome(ctx context.Context, id, outcome string) error {
	for _, e := range m.entries {
		if e.ID == id {
			e.Outcome = outcome
			return nil
		}
	}
	return fmt.Errorf("audit entry %s not found", id)
}

// mockMirror is an in-memory MirrorStore.
type mockMirror struct {
	snapshot *secondary.MirrorSnapshot
}

func (m *mockMirror) SaveMirror(snapshot *secondary.MirrorSnapshot) error {
	m.snapshot = snapshot
	return nil
}

func (m *mockMirror) LoadMirror() (*secondary.MirrorSnapshot, bool, error) {
	if m.snapshot == nil {
		return nil, false, nil
	}
	return m.snapshot, true, nil
}

// mockReports records written reports.
type mockReports struct {
	names    []string
	contents []string
}

func (m *mockReports) WriteReport(name, content string) (string, error) {
	m.names = append(m.names, name)
	m.contents = append(m.contents, content)
	return "/reports/" + name, nil
}

// mockCalendar serves fixed events.
type mockCalendar struct {
	events []secondary.Event
	err    error
}

func (m *mockCalendar) ListEvents(ctx context.Context, from, to time.Time) ([]secondary.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}
