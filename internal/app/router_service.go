package app

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/example/aide/internal/core/intent"
	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

// RouterApp implements primary.RouterService. It classifies one
// instruction against the closed action space and dispatches to the
// matching handler. Mutating intents pass the safety gate: without
// execute consent they only produce a persisted preview.
type RouterApp struct {
	gate      *GateService
	capture   *CaptureApp
	triage    *TriageApp
	prefs     *PrefsApp
	workspace secondary.WorkspaceRepository
	mirror    secondary.MirrorStore
	rules     intent.Rules
	deployCmd string
	logger    *zap.Logger
}

// NewRouterApp creates the router. rules carries operator keyword
// overrides already merged over the defaults.
func NewRouterApp(
	gate *GateService,
	capture *CaptureApp,
	triage *TriageApp,
	prefs *PrefsApp,
	workspace secondary.WorkspaceRepository,
	mirror secondary.MirrorStore,
	rules intent.Rules,
	deployCmd string,
	logger *zap.Logger,
) *RouterApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouterApp{
		gate:      gate,
		capture:   capture,
		triage:    triage,
		prefs:     prefs,
		workspace: workspace,
		mirror:    mirror,
		rules:     rules,
		deployCmd: deployCmd,
		logger:    logger,
	}
}

// Route handles one instruction end to end. Nothing panics past this
// boundary; failures land in the envelope's Errors.
func (s *RouterApp) Route(ctx context.Context, instr primary.Instruction) (env *primary.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked", zap.Any("panic", r))
			env = primary.NewEnvelope("Something went wrong")
			env.AddError(fmt.Sprintf("internal error: %v", r))
		}
	}()

	it := intent.Classify(instr.Text, intent.Context{
		HasLastPreview: s.gate.HasLastPreview(ctx),
		Backlog:        s.backlogEntries(ctx),
		Rules:          s.rules,
	})
	s.logger.Info("instruction classified",
		zap.String("kind", string(it.Kind)), zap.Float64("confidence", it.Confidence))

	switch it.Kind {
	case intent.KindSearch:
		return s.handleSearch(ctx, it)
	case intent.KindShowBacklog:
		return s.handleBacklog(ctx)
	case intent.KindTriage:
		return s.triage.Triage(ctx, primary.TriageRequest{Apply: instr.Execute})
	case intent.KindCreateRecord:
		return s.handleCreate(ctx, it, instr)
	case intent.KindUpdateRecord:
		return s.handleUpdate(ctx, it, instr)
	case intent.KindApplyLast:
		return s.handleApplyLast(ctx)
	case intent.KindDeploy:
		return s.handleDeploy(ctx, instr)
	case intent.KindSetPrefs:
		return s.handlePrefs(ctx, it)
	default:
		env = primary.NewEnvelope("I did not understand that")
		env.AddError(it.Note)
		env.AddNextAction("try `aide do \"show backlog\"`, `aide do \"triage\"`, or `aide capture`")
		return env
	}
}

// consented reports whether a mutating intent may be applied in this
// invocation: explicit --execute, or auto-apply with enough confidence.
func (s *RouterApp) consented(ctx context.Context, instr primary.Instruction, confidence float64) bool {
	if instr.Execute {
		return true
	}
	enabled, floor, err := s.prefs.AutoApplyFloor(ctx)
	if err != nil {
		return false
	}
	if !enabled && !instr.AutoApply {
		return false
	}
	return confidence >= floor
}

func (s *RouterApp) handleSearch(ctx context.Context, it intent.Intent) *primary.Envelope {
	env := primary.NewEnvelope("")
	if it.Query == "" {
		env.Summary = "Nothing to search for"
		env.AddError("could not extract a search phrase from the instruction")
		return env
	}

	records, fromMirror, err := s.query(ctx, secondary.RequestFilter{Query: it.Query})
	if err != nil {
		env.Summary = "Search failed"
		env.AddError(err.Error())
		return env
	}

	env.Summary = fmt.Sprintf("Found %d requests matching %q", len(records), it.Query)
	if fromMirror {
		env.Summary += " (from local mirror)"
	}
	env.Result = toFrictionList(records)
	return env
}

func (s *RouterApp) handleBacklog(ctx context.Context) *primary.Envelope {
	env := primary.NewEnvelope("")

	records, fromMirror, err := s.query(ctx, secondary.RequestFilter{Statuses: openStatuses})
	if err != nil {
		env.Summary = "Backlog listing failed"
		env.AddError(err.Error())
		return env
	}

	env.Summary = fmt.Sprintf("%d open requests", len(records))
	if fromMirror {
		env.Summary += " (from local mirror)"
	}
	env.Result = toFrictionList(records)
	env.AddNextAction("run `aide triage` to rank these")
	return env
}

func (s *RouterApp) handleCreate(ctx context.Context, it intent.Intent, instr primary.Instruction) *primary.Envelope {
	capture := it.Capture
	if capture == nil {
		env := primary.NewEnvelope("Capture failed")
		env.AddError("create intent carried no capture fields")
		return env
	}
	return s.capture.Capture(ctx, primary.CaptureRequest{
		Complaint:      capture.Description,
		DesiredOutcome: capture.DesiredOutcome,
		Frequency:      capture.Frequency,
		Impact:         capture.Impact,
		Domains:        capture.Domains,
		Source:         capture.Source,
		Execute:        s.consented(ctx, instr, it.Confidence),
	})
}

func (s *RouterApp) handleUpdate(ctx context.Context, it intent.Intent, instr primary.Instruction) *primary.Envelope {
	env := primary.NewEnvelope("")

	target, err := s.fetchTarget(ctx, it.TargetID)
	if err != nil {
		env.Summary = "Update failed"
		env.AddError(err.Error())
		return env
	}

	p, err := s.gate.ProposeUpdate(ctx, target, it.Fields, it.Confidence)
	if err != nil {
		env.Summary = "Update failed"
		env.AddError(err.Error())
		return env
	}
	if len(p.Changes) == 0 {
		env.Summary = fmt.Sprintf("%q already matches the requested values", target.Title)
		env.Result = p
		return env
	}

	if !s.consented(ctx, instr, it.Confidence) {
		env.Summary = fmt.Sprintf("Would update %q (%d field(s): %s)",
			target.Title, len(p.Changes), strings.Join(sortedKeys(it.Fields), ", "))
		env.Result = p
		env.AddNextAction("say \"apply that\" or re-run with --execute to apply")
		return env
	}
	return s.applyStored(ctx, p.Token)
}

func (s *RouterApp) handleApplyLast(ctx context.Context) *primary.Envelope {
	// "apply that" is itself the consent: it names the stored preview.
	return s.applyStored(ctx, "")
}

func (s *RouterApp) applyStored(ctx context.Context, token string) *primary.Envelope {
	env := primary.NewEnvelope("")

	outcome, err := s.gate.Apply(ctx, token)
	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.As(err, &conflict):
			env.Summary = "Apply aborted: the record changed underneath the preview"
			env.Result = map[string]any{"previewed": conflict.Persisted, "current": conflict.Fresh}
			env.AddError(err.Error())
			env.AddNextAction("review the current state and propose the change again")
		case errors.Is(err, ErrNoPreview), errors.Is(err, ErrPreviewStale), errors.Is(err, ErrTokenMismatch):
			env.Summary = "Nothing applied"
			env.AddError(err.Error())
		default:
			env.Summary = "Apply failed"
			env.AddError(err.Error())
		}
		return env
	}

	if outcome.Queued {
		env.Summary = "Workspace unreachable; change queued for later delivery"
		env.Result = outcome.Preview
		env.AddNextAction("run `aide queue flush` when back online")
		return env
	}

	env.Summary = fmt.Sprintf("Applied %s to %q", outcome.Preview.Action, outcome.Record.Title)
	env.Result = toFriction(outcome.Record)
	return env
}

func (s *RouterApp) handleDeploy(ctx context.Context, instr primary.Instruction) *primary.Envelope {
	env := primary.NewEnvelope("")
	if s.deployCmd == "" {
		env.Summary = "No deploy command configured"
		env.AddError("set deploy_command in config.json or AIDE_DEPLOY_COMMAND")
		return env
	}

	if !instr.Execute {
		env.Summary = fmt.Sprintf("Would run: %s", s.deployCmd)
		env.AddNextAction("re-run with --execute to deploy")
		return env
	}

	out, err := exec.CommandContext(ctx, "sh", "-c", s.deployCmd).CombinedOutput()
	if err != nil {
		env.Summary = "Deploy failed"
		env.Result = string(out)
		env.AddError(err.Error())
		return env
	}

	env.Summary = "Deploy command finished"
	env.Result = string(out)
	return env
}

func (s *RouterApp) handlePrefs(ctx context.Context, it intent.Intent) *primary.Envelope {
	env := primary.NewEnvelope("")

	applied := make([]string, 0, len(it.Prefs))
	for _, key := range sortedKeys(it.Prefs) {
		if err := s.prefs.Set(ctx, key, it.Prefs[key]); err != nil {
			env.AddError(err.Error())
			continue
		}
		applied = append(applied, fmt.Sprintf("%s=%s", key, it.Prefs[key]))
	}

	if len(applied) == 0 {
		env.Summary = "No preferences changed"
		return env
	}
	env.Summary = fmt.Sprintf("Updated preferences: %s", strings.Join(applied, ", "))
	prefs, err := s.prefs.Show(ctx)
	if err == nil {
		env.Result = prefs
	}
	return env
}

// fetchTarget loads the update target, degrading to the mirror when the
// workspace is unreachable (the gate re-fetches live state at apply).
func (s *RouterApp) fetchTarget(ctx context.Context, id string) (*secondary.RequestRecord, error) {
	record, err := s.workspace.Get(ctx, id)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, secondary.ErrUnreachable) {
		return nil, err
	}
	snapshot, ok, merr := s.mirror.LoadMirror()
	if merr == nil && ok {
		for _, r := range snapshot.Requests {
			if r.ID == id {
				return r, nil
			}
		}
	}
	return nil, err
}

// query runs a workspace query with mirror fallback for reads.
func (s *RouterApp) query(ctx context.Context, filter secondary.RequestFilter) ([]*secondary.RequestRecord, bool, error) {
	records, err := s.workspace.Query(ctx, filter)
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
	return filterRecords(snapshot.Requests, filter), true, nil
}

// backlogEntries builds the classifier's view of known records,
// best-effort: mirror first, then a bounded live query, else empty.
func (s *RouterApp) backlogEntries(ctx context.Context) []intent.BacklogEntry {
	snapshot, ok, err := s.mirror.LoadMirror()
	if err == nil && ok {
		return toBacklogEntries(snapshot.Requests)
	}
	records, err := s.workspace.Query(ctx, secondary.RequestFilter{Limit: 200})
	if err != nil {
		return nil
	}
	return toBacklogEntries(records)
}

func toBacklogEntries(records []*secondary.RequestRecord) []intent.BacklogEntry {
	entries := make([]intent.BacklogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, intent.BacklogEntry{ID: r.ID, Title: r.Title, Status: r.Status})
	}
	return entries
}

func toFrictionList(records []*secondary.RequestRecord) []*primary.FrictionRequest {
	out := make([]*primary.FrictionRequest, 0, len(records))
	for _, r := range records {
		out = append(out, toFriction(r))
	}
	return out
}

// filterRecords applies a workspace filter to mirror records.
func filterRecords(records []*secondary.RequestRecord, filter secondary.RequestFilter) []*secondary.RequestRecord {
	statuses := map[string]bool{}
	for _, s := range filter.Statuses {
		statuses[s] = true
	}
	needle := strings.ToLower(filter.Query)

	var out []*secondary.RequestRecord
	for _, r := range records {
		if len(statuses) > 0 && !statuses[r.Status] {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(r.Title + " " + r.Description)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out
}
