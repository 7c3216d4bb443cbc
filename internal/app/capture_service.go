package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/aide/internal/core/intent"
	"github.com/example/aide/internal/core/request"
	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

var validFrequencies = map[string]bool{
	request.FrequencyOnce:   true,
	request.FrequencyWeekly: true,
	request.FrequencyDaily:  true,
	request.FrequencyMany:   true,
}

var validImpacts = map[string]bool{
	request.ImpactLow:    true,
	request.ImpactMedium: true,
	request.ImpactHigh:   true,
}

// CaptureApp implements primary.CaptureService. Captures go through the
// same gate as every other mutation: preview first, create on consent,
// queue when offline.
type CaptureApp struct {
	gate   *GateService
	logger *zap.Logger
}

// NewCaptureApp creates the capture service.
func NewCaptureApp(gate *GateService, logger *zap.Logger) *CaptureApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureApp{gate: gate, logger: logger}
}

// Capture turns a complaint into a friction request record.
func (s *CaptureApp) Capture(ctx context.Context, req primary.CaptureRequest) *primary.Envelope {
	env := primary.NewEnvelope("")

	complaint := intent.NormalizeText(req.Complaint)
	if complaint == "" {
		env.Summary = "Nothing to capture"
		env.AddError("complaint text is empty")
		return env
	}

	frequency := strings.ToLower(strings.TrimSpace(req.Frequency))
	if frequency == "" {
		frequency = request.FrequencyOnce
	}
	if !validFrequencies[frequency] {
		env.Summary = "Capture rejected"
		env.AddError(fmt.Sprintf("unknown frequency %q (once, weekly, daily, many-times-per-day)", req.Frequency))
		return env
	}

	impact := strings.ToLower(strings.TrimSpace(req.Impact))
	if impact == "" {
		impact = request.ImpactLow
	}
	if !validImpacts[impact] {
		env.Summary = "Capture rejected"
		env.AddError(fmt.Sprintf("unknown impact %q (low, medium, high)", req.Impact))
		return env
	}

	title := intent.ShortTitle(complaint)
	outcome := req.DesiredOutcome
	if outcome == "" {
		outcome = intent.InferOutcome(title)
	}
	source := req.Source
	if source == "" {
		source = "cli"
	}

	record := &secondary.RequestRecord{
		Title:          title,
		Description:    complaint,
		DesiredOutcome: outcome,
		Frequency:      frequency,
		Impact:         impact,
		Domains:        req.Domains,
		Status:         string(request.InitialStatus()),
		Source:         source,
		Link:           req.Link,
		Notes:          req.Notes,
	}

	p, err := s.gate.ProposeCreate(ctx, record, 1.0)
	if err != nil {
		env.Summary = "Capture failed"
		env.AddError(err.Error())
		return env
	}

	if !req.Execute {
		env.Summary = fmt.Sprintf("Would capture %q", title)
		env.Result = p
		env.AddNextAction("run again with --execute, or say \"apply that\"")
		return env
	}

	outcomeResult, err := s.gate.Apply(ctx, p.Token)
	if err != nil {
		env.Summary = "Capture failed"
		env.AddError(err.Error())
		return env
	}
	if outcomeResult.Queued {
		env.Summary = fmt.Sprintf("Workspace unreachable; queued capture of %q", title)
		env.Result = p
		env.AddNextAction("run `aide queue flush` when back online")
		return env
	}

	s.logger.Info("friction request captured", zap.String("id", outcomeResult.Record.ID))
	env.Summary = fmt.Sprintf("Captured %q as %s", title, outcomeResult.Record.ID)
	env.Result = toFriction(outcomeResult.Record)
	env.AddNextAction("run `aide triage` to rank the backlog")
	return env
}
