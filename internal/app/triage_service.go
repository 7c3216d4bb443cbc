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

	"github.com/example/aide/internal/core/request"
	"github.com/example/aide/internal/core/triage"
	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

// TriageApp implements primary.TriageService: fetch the open backlog,
// score it, write the dated report, and optionally advance fresh items
// into triaging.
type TriageApp struct {
	workspace secondary.WorkspaceRepository
	mirror    secondary.MirrorStore
	reports   secondary.ReportWriter
	prefs     secondary.PreferenceStore
	queue     secondary.WriteQueue
	audit     secondary.AuditLog
	themes    triage.Rules
	logger    *zap.Logger
	now       func() time.Time
}

// NewTriageApp creates the triage service. themes carries operator
// overrides already merged over the defaults.
func NewTriageApp(
	workspace secondary.WorkspaceRepository,
	mirror secondary.MirrorStore,
	reports secondary.ReportWriter,
	prefs secondary.PreferenceStore,
	queue secondary.WriteQueue,
	audit secondary.AuditLog,
	themes triage.Rules,
	logger *zap.Logger,
) *TriageApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageApp{
		workspace: workspace,
		mirror:    mirror,
		reports:   reports,
		prefs:     prefs,
		queue:     queue,
		audit:     audit,
		themes:    themes,
		logger:    logger,
		now:       time.Now,
	}
}

var openStatuses = []string{
	string(request.StatusNew),
	string(request.StatusTriaging),
	string(request.StatusSpecReady),
	string(request.StatusBuilding),
}

// Triage runs one scoring pass over the open backlog.
func (s *TriageApp) Triage(ctx context.Context, req primary.TriageRequest) *primary.Envelope {
	env := primary.NewEnvelope("")
	now := s.now()

	weights, err := s.resolveWeights(ctx, req)
	if err != nil {
		env.Summary = "Triage failed"
		env.AddError(err.Error())
		return env
	}

	records, fromMirror, err := s.fetchOpen(ctx)
	if err != nil {
		env.Summary = "Triage failed"
		env.AddError(err.Error())
		if errors.Is(err, secondary.ErrUnreachable) {
			env.AddNextAction("run `aide sync` once online to build a local mirror")
		}
		return env
	}

	byID := make(map[string]*secondary.RequestRecord, len(records))
	candidates := make([]triage.Candidate, 0, len(records))
	for _, r := range records {
		byID[r.ID] = r
		candidates = append(candidates, toCandidate(r))
	}

	ranked := triage.Rank(candidates, weights, s.themes, now)
	selected := triage.Select(ranked, req.Limit)

	result := &primary.TriageResult{
		Reviewed:   len(ranked),
		FromMirror: fromMirror,
		Selected:   make([]*primary.RankedRequest, 0, len(selected)),
	}
	for _, item := range selected {
		rr := &primary.RankedRequest{
			Request: toFriction(byID[item.Candidate.ID]),
			Score:   item.Score,
			Theme:   item.Theme,
		}
		if item.Candidate.Status == string(request.StatusNew) {
			rr.ProposedStatus = string(request.StatusTriaging)
		}
		result.Selected = append(result.Selected, rr)
	}

	name := fmt.Sprintf("triage-%s.md", now.Format("2006-01-02"))
	path, err := s.reports.WriteReport(name, triage.BuildReport(selected, len(ranked), weights, now))
	if err != nil {
		env.AddError(fmt.Sprintf("failed to write report: %v", err))
	} else {
		result.ReportPath = path
	}

	if req.Apply {
		s.advanceSelected(ctx, env, result)
	}

	env.Summary = fmt.Sprintf("Reviewed %d open requests, selected top %d", result.Reviewed, len(result.Selected))
	if fromMirror {
		env.Summary += " (from local mirror)"
	}
	env.Result = result
	if !req.Apply {
		env.AddNextAction("re-run with --apply to advance new items to triaging")
	}
	return env
}

// advanceSelected moves selected new items forward one step. Only the
// new -> triaging edge is taken; triage never skips states or touches
// items already in flight. Each target is re-fetched immediately before
// the write, so a record moved externally since the scoring pass is
// never dragged back.
func (s *TriageApp) advanceSelected(ctx context.Context, env *primary.Envelope, result *primary.TriageResult) {
	for _, rr := range result.Selected {
		if rr.ProposedStatus == "" {
			continue
		}
		from := request.Status(rr.Request.Status)
		to := request.Status(rr.ProposedStatus)

		fresh, err := s.workspace.Get(ctx, rr.Request.ID)
		switch {
		case err == nil:
			from = request.Status(fresh.Status)
		case errors.Is(err, secondary.ErrUnreachable):
			// Offline run: the write is queued below and the snapshot
			// status is the best status we have.
		default:
			env.AddError(fmt.Sprintf("%s not advanced: %v", rr.Request.ID, err))
			continue
		}

		if guard := request.CanTransition(from, to); !guard.Allowed {
			s.logger.Warn("skipping transition", zap.String("id", rr.Request.ID), zap.String("reason", guard.Reason))
			env.AddError(fmt.Sprintf("%s not advanced: %s", rr.Request.ID, guard.Reason))
			continue
		}

		fields := map[string]string{secondary.FieldStatus: rr.ProposedStatus}
		queued, err := s.write(ctx, rr.Request.ID, fields)
		switch {
		case err != nil:
			s.logger.Warn("triage advance failed", zap.String("id", rr.Request.ID), zap.Error(err))
		case queued:
			result.Queued = append(result.Queued, rr.Request.ID)
		default:
			result.Applied = append(result.Applied, rr.Request.ID)
		}
	}
}

// write updates one record, falling back to the offline queue when the
// workspace is unreachable. Every attempt is audited before the call.
func (s *TriageApp) write(ctx context.Context, id string, fields map[string]string) (queued bool, err error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return false, err
	}

	auditID := ulid.Make().String()
	entry := &secondary.AuditEntry{
		ID:           auditID,
		InvocationID: uuid.NewString(),
		Action:       secondary.QueueOpUpdate,
		TargetID:     id,
		Payload:      string(payload),
		Outcome:      secondary.AuditOutcomePending,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		return false, err
	}

	_, err = s.workspace.Update(ctx, id, fields)
	if errors.Is(err, secondary.ErrUnreachable) {
		write := &secondary.QueuedWrite{
			ID:         ulid.Make().String(),
			Target:     "workspace",
			Operation:  secondary.QueueOpUpdate,
			TargetID:   id,
			Payload:    string(payload),
			EnqueuedAt: s.now().UTC().Format(time.RFC3339),
		}
		if qerr := s.queue.Enqueue(ctx, write); qerr != nil {
			s.setAuditOutcome(ctx, auditID, secondary.AuditOutcomeFailed)
			return false, qerr
		}
		s.setAuditOutcome(ctx, auditID, secondary.AuditOutcomeQueued)
		return true, nil
	}
	if err != nil {
		s.setAuditOutcome(ctx, auditID, secondary.AuditOutcomeFailed)
		return false, err
	}
	s.setAuditOutcome(ctx, auditID, secondary.AuditOutcomeApplied)
	return false, nil
}

func (s *TriageApp) setAuditOutcome(ctx context.Context, id, outcome string) {
	if err := s.audit.SetOutcome(ctx, id, outcome); err != nil {
		s.logger.Warn("failed to resolve audit entry", zap.Error(err))
	}
}

// fetchOpen returns the open backlog, preferring the live workspace and
// degrading to the local mirror when unreachable.
func (s *TriageApp) fetchOpen(ctx context.Context) ([]*secondary.RequestRecord, bool, error) {
	records, err := s.workspace.Query(ctx, secondary.RequestFilter{Statuses: openStatuses})
	if err == nil {
		return records, false, nil
	}
	if !errors.Is(err, secondary.ErrUnreachable) {
		return nil, false, err
	}

	snapshot, ok, merr := s.mirror.LoadMirror()
	if merr != nil || !ok {
		return nil, false, err
	}

	var open []*secondary.RequestRecord
	for _, r := range snapshot.Requests {
		if status, perr := request.ParseStatus(r.Status); perr == nil && !request.IsTerminal(status) {
			open = append(open, r)
		}
	}
	return open, true, nil
}

// resolveWeights layers flag overrides over stored preferences over the
// built-in defaults. Flags at or below zero mean "not set".
func (s *TriageApp) resolveWeights(ctx context.Context, req primary.TriageRequest) (triage.Weights, error) {
	weights, err := storedWeights(ctx, s.prefs)
	if err != nil {
		return weights, err
	}
	if req.ImpactWeight > 0 {
		weights.Impact = req.ImpactWeight
	}
	if req.FrequencyWeight > 0 {
		weights.Frequency = req.FrequencyWeight
	}
	if req.RecencyWeight > 0 {
		weights.Recency = req.RecencyWeight
	}
	return weights, nil
}
