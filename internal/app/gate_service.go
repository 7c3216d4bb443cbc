package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/example/aide/internal/core/intent"
	"github.com/example/aide/internal/core/preview"
	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

// Gate apply errors.
var (
	ErrNoPreview     = errors.New("no preview is stored; propose a change first")
	ErrPreviewStale  = errors.New("stored preview has expired; propose the change again")
	ErrTokenMismatch = errors.New("preview token does not match the stored preview")
)

// ConflictError means the target record changed between preview and
// apply: the diff no longer describes the same mutation, so nothing was
// written.
type ConflictError struct {
	Persisted []preview.FieldChange
	Fresh     []preview.FieldChange
}

func (e *ConflictError) Error() string {
	return "record changed since the preview was computed; review the new state and propose again"
}

// ApplyOutcome reports what happened to a consented preview.
type ApplyOutcome struct {
	Preview *primary.Preview
	Record  *secondary.RequestRecord // nil when queued
	Queued  bool
}

// storedSlot is the persisted single-slot preview. For creates it
// carries the full record so apply does not have to reconstruct it from
// the diff.
type storedSlot struct {
	Preview primary.Preview          `json:"preview"`
	Record  *secondary.RequestRecord `json:"record,omitempty"`
}

// GateService is the safety gate between intent and external writes.
// Propose computes and persists a diff; Apply consumes the slot after
// re-validating against current remote state. Callers are responsible
// for collecting explicit execute consent before calling Apply.
type GateService struct {
	prefs     secondary.PreferenceStore
	workspace secondary.WorkspaceRepository
	calendar  secondary.CalendarReader
	queue     secondary.WriteQueue
	audit     secondary.AuditLog
	logger    *zap.Logger
	now       func() time.Time
	newToken  func() string
}

// NewGateService creates a gate. calendar may be nil when no calendar
// is configured; duplicate checks are then skipped.
func NewGateService(
	prefs secondary.PreferenceStore,
	workspace secondary.WorkspaceRepository,
	calendar secondary.CalendarReader,
	queue secondary.WriteQueue,
	audit secondary.AuditLog,
	logger *zap.Logger,
) *GateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GateService{
		prefs:     prefs,
		workspace: workspace,
		calendar:  calendar,
		queue:     queue,
		audit:     audit,
		logger:    logger,
		now:       time.Now,
		newToken:  func() string { return ulid.Make().String() },
	}
}

// ProposeUpdate computes the diff an update would apply and persists it
// as the last preview. An empty diff is returned but not persisted:
// applying a no-op is not a mutation.
func (s *GateService) ProposeUpdate(ctx context.Context, target *secondary.RequestRecord, desired map[string]string, confidence float64) (*primary.Preview, error) {
	changes := preview.Diff(recordFields(target), desired)
	p := &primary.Preview{
		Token:       s.newToken(),
		Action:      secondary.QueueOpUpdate,
		TargetID:    target.ID,
		TargetTitle: target.Title,
		Changes:     changes,
		Confidence:  confidence,
		CreatedAt:   s.now(),
	}
	if len(changes) == 0 {
		return p, nil
	}
	if err := s.saveSlot(ctx, &storedSlot{Preview: *p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ProposeCreate computes the creation preview (every populated field as
// a change from empty), runs the calendar duplicate check, and persists
// the slot.
func (s *GateService) ProposeCreate(ctx context.Context, record *secondary.RequestRecord, confidence float64) (*primary.Preview, error) {
	desired := map[string]string{}
	for field, value := range recordFields(record) {
		if value != "" {
			desired[field] = value
		}
	}

	p := &primary.Preview{
		Token:       s.newToken(),
		Action:      secondary.QueueOpCreate,
		TargetTitle: record.Title,
		Changes:     preview.Diff(map[string]string{}, desired),
		Confidence:  confidence,
		Warnings:    s.duplicateWarnings(ctx, record.Title),
		CreatedAt:   s.now(),
	}
	if err := s.saveSlot(ctx, &storedSlot{Preview: *p, Record: record}); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply consumes the stored preview. An empty token means "the last
// preview"; a non-empty token must match the slot. The target is
// re-fetched and re-diffed before writing; a disagreement aborts with
// ConflictError. When the workspace is unreachable the write lands in
// the offline queue instead of being lost.
func (s *GateService) Apply(ctx context.Context, token string) (*ApplyOutcome, error) {
	slot, ok, err := s.loadSlot(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPreview
	}
	if token != "" && token != slot.Preview.Token {
		return nil, ErrTokenMismatch
	}
	if preview.IsStale(slot.Preview.CreatedAt, s.now()) {
		if err := s.clearSlot(ctx); err != nil {
			return nil, err
		}
		return nil, ErrPreviewStale
	}

	// Intent is recorded before the network call so a crash mid-write
	// leaves an audit entry with outcome pending.
	payload, err := json.Marshal(slot.Preview.Changes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit payload: %w", err)
	}
	auditID := s.newToken()
	entry := &secondary.AuditEntry{
		ID:           auditID,
		InvocationID: uuid.NewString(),
		Action:       slot.Preview.Action,
		TargetID:     slot.Preview.TargetID,
		Payload:      string(payload),
		Outcome:      secondary.AuditOutcomePending,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	var outcome *ApplyOutcome
	if slot.Preview.Action == secondary.QueueOpCreate {
		outcome, err = s.applyCreate(ctx, slot)
	} else {
		outcome, err = s.applyUpdate(ctx, slot)
	}

	switch {
	case err != nil:
		if auditErr := s.audit.SetOutcome(ctx, auditID, secondary.AuditOutcomeFailed); auditErr != nil {
			s.logger.Warn("failed to resolve audit entry", zap.Error(auditErr))
		}
		return nil, err
	case outcome.Queued:
		err = s.audit.SetOutcome(ctx, auditID, secondary.AuditOutcomeQueued)
	default:
		err = s.audit.SetOutcome(ctx, auditID, secondary.AuditOutcomeApplied)
	}
	if err != nil {
		s.logger.Warn("failed to resolve audit entry", zap.Error(err))
	}

	// The consent is consumed either way: applied directly or owned by
	// the queue from here on.
	if err := s.clearSlot(ctx); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *GateService) applyUpdate(ctx context.Context, slot *storedSlot) (*ApplyOutcome, error) {
	desired := desiredFields(slot.Preview.Changes)

	fresh, err := s.workspace.Get(ctx, slot.Preview.TargetID)
	if errors.Is(err, secondary.ErrUnreachable) {
		return s.enqueue(ctx, slot, desired)
	}
	if err != nil {
		return nil, err
	}

	freshChanges := preview.Diff(recordFields(fresh), desired)
	if !preview.Equal(slot.Preview.Changes, freshChanges) {
		return nil, &ConflictError{Persisted: slot.Preview.Changes, Fresh: freshChanges}
	}

	updated, err := s.workspace.Update(ctx, slot.Preview.TargetID, desired)
	if errors.Is(err, secondary.ErrUnreachable) {
		return s.enqueue(ctx, slot, desired)
	}
	if err != nil {
		return nil, err
	}
	return &ApplyOutcome{Preview: &slot.Preview, Record: updated}, nil
}

func (s *GateService) applyCreate(ctx context.Context, slot *storedSlot) (*ApplyOutcome, error) {
	if slot.Record == nil {
		return nil, errors.New("stored create preview carries no record")
	}

	created, err := s.workspace.Create(ctx, slot.Record, slot.Preview.Token)
	if errors.Is(err, secondary.ErrUnreachable) {
		payload, merr := json.Marshal(slot.Record)
		if merr != nil {
			return nil, fmt.Errorf("failed to encode queued create: %w", merr)
		}
		return s.enqueueRaw(ctx, slot, string(payload))
	}
	if err != nil {
		return nil, err
	}
	return &ApplyOutcome{Preview: &slot.Preview, Record: created}, nil
}

func (s *GateService) enqueue(ctx context.Context, slot *storedSlot, desired map[string]string) (*ApplyOutcome, error) {
	payload, err := json.Marshal(desired)
	if err != nil {
		return nil, fmt.Errorf("failed to encode queued update: %w", err)
	}
	return s.enqueueRaw(ctx, slot, string(payload))
}

func (s *GateService) enqueueRaw(ctx context.Context, slot *storedSlot, payload string) (*ApplyOutcome, error) {
	// The queue entry reuses the preview token as its ID; for creates it
	// doubles as the idempotency token, so replays cannot duplicate.
	write := &secondary.QueuedWrite{
		ID:         slot.Preview.Token,
		Target:     "workspace",
		Operation:  slot.Preview.Action,
		TargetID:   slot.Preview.TargetID,
		Payload:    payload,
		EnqueuedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.queue.Enqueue(ctx, write); err != nil {
		return nil, fmt.Errorf("workspace unreachable and enqueue failed: %w", err)
	}
	s.logger.Info("write queued for later flush",
		zap.String("operation", write.Operation), zap.String("target_id", write.TargetID))
	return &ApplyOutcome{Preview: &slot.Preview, Queued: true}, nil
}

// LastPreview returns the stored preview without consuming it.
func (s *GateService) LastPreview(ctx context.Context) (*primary.Preview, bool, error) {
	slot, ok, err := s.loadSlot(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return &slot.Preview, true, nil
}

// HasLastPreview reports whether an applyable preview is stored.
func (s *GateService) HasLastPreview(ctx context.Context) bool {
	slot, ok, err := s.loadSlot(ctx)
	if err != nil || !ok {
		return false
	}
	return !preview.IsStale(slot.Preview.CreatedAt, s.now())
}

// duplicateWarnings checks the calendar for events resembling the
// proposed title. Warnings never block a proposal; an unreachable
// calendar degrades to a note that the check was skipped.
func (s *GateService) duplicateWarnings(ctx context.Context, title string) []string {
	if s.calendar == nil || title == "" {
		return nil
	}
	from := s.now()
	events, err := s.calendar.ListEvents(ctx, from, from.Add(14*24*time.Hour))
	if err != nil {
		s.logger.Warn("calendar duplicate check skipped", zap.Error(err))
		return []string{"calendar unavailable; duplicate check skipped"}
	}

	var warnings []string
	for _, ev := range events {
		if intent.Similarity(title, ev.Title) >= 0.5 {
			warnings = append(warnings,
				fmt.Sprintf("calendar already has a similar event: %q on %s",
					ev.Title, ev.Start.Format("2006-01-02")))
		}
	}
	return warnings
}

func desiredFields(changes []preview.FieldChange) map[string]string {
	desired := make(map[string]string, len(changes))
	for _, change := range changes {
		desired[change.Field] = change.After
	}
	return desired
}

func (s *GateService) saveSlot(ctx context.Context, slot *storedSlot) error {
	data, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	return s.prefs.Set(ctx, prefKeyLastPreview, string(data))
}

func (s *GateService) loadSlot(ctx context.Context) (*storedSlot, bool, error) {
	raw, ok, err := s.prefs.Get(ctx, prefKeyLastPreview)
	if err != nil || !ok {
		return nil, false, err
	}
	slot := &storedSlot{}
	if err := json.Unmarshal([]byte(raw), slot); err != nil {
		return nil, false, fmt.Errorf("failed to parse stored preview: %w", err)
	}
	return slot, true, nil
}

func (s *GateService) clearSlot(ctx context.Context) error {
	return s.prefs.Delete(ctx, prefKeyLastPreview)
}
