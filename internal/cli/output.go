// Package cli contains the cobra commands. Every command resolves its
// service through wire, prints the resulting envelope, and exits
// non-zero when the envelope carries errors.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

// ErrFailed signals a non-zero exit after the envelope was already
// printed. main treats it as "exit 1, nothing more to say".
var ErrFailed = errors.New("command failed")

var (
	headline = color.New(color.Bold)
	errText  = color.New(color.FgRed)
	warnText = color.New(color.FgYellow)
	nextText = color.New(color.FgCyan)
	dimText  = color.New(color.Faint)
)

// finish prints the envelope and maps its error state to the exit code.
func finish(env *primary.Envelope, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode envelope: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printHuman(env)
	}
	if !env.OK() {
		return ErrFailed
	}
	return nil
}

func printHuman(env *primary.Envelope) {
	headline.Println(env.Summary)
	renderResult(env.Result)
	for _, next := range env.NextActions {
		nextText.Printf("  → %s\n", next)
	}
	for _, msg := range env.Errors {
		errText.Fprintf(os.Stderr, "  ✗ %s\n", msg)
	}
}

func renderResult(result any) {
	switch v := result.(type) {
	case nil:
	case []*primary.FrictionRequest:
		printRequests(v)
	case *primary.FrictionRequest:
		printRequests([]*primary.FrictionRequest{v})
	case *primary.Preview:
		printPreview(v)
	case *primary.TriageResult:
		printTriage(v)
	case *primary.FlushResult:
		if len(v.FailedIDs) > 0 {
			dimText.Printf("  failed: %v\n", v.FailedIDs)
		}
	case []*secondary.QueuedWrite:
		printQueue(v)
	case *primary.Preferences:
		printPrefs(v)
	case string:
		if v != "" {
			fmt.Println(v)
		}
	default:
		if data, err := json.MarshalIndent(v, "", "  "); err == nil {
			fmt.Println(string(data))
		}
	}
}

func printRequests(requests []*primary.FrictionRequest) {
	if len(requests) == 0 {
		return
	}
	fmt.Printf("\n%-10s %-10s %-8s %-20s %s\n", "ID", "STATUS", "IMPACT", "FREQUENCY", "TITLE")
	fmt.Println("────────────────────────────────────────────────────────────────────────")
	for _, r := range requests {
		fmt.Printf("%-10s %-10s %-8s %-20s %s\n", r.ID, r.Status, r.Impact, r.Frequency, r.Title)
	}
	fmt.Println()
}

func printPreview(p *primary.Preview) {
	if p.TargetTitle != "" {
		dimText.Printf("  target: %s", p.TargetTitle)
		if p.TargetID != "" {
			dimText.Printf(" (%s)", p.TargetID)
		}
		fmt.Println()
	}
	for _, change := range p.Changes {
		if change.Before == "" {
			fmt.Printf("  %s: %q\n", change.Field, change.After)
			continue
		}
		fmt.Printf("  %s: %q → %q\n", change.Field, change.Before, change.After)
	}
	for _, warning := range p.Warnings {
		warnText.Printf("  ⚠ %s\n", warning)
	}
	dimText.Printf("  confidence %.2f, token %s\n", p.Confidence, p.Token)
}

func printTriage(result *primary.TriageResult) {
	if len(result.Selected) == 0 {
		fmt.Println("Nothing to triage.")
		return
	}
	fmt.Printf("\n%-6s %-10s %-22s %s\n", "SCORE", "STATUS", "THEME", "TITLE")
	fmt.Println("────────────────────────────────────────────────────────────────────────")
	for _, item := range result.Selected {
		fmt.Printf("%-6.1f %-10s %-22s %s\n",
			item.Score, item.Request.Status, item.Theme, item.Request.Title)
	}
	fmt.Println()
	if result.ReportPath != "" {
		dimText.Printf("  report: %s\n", result.ReportPath)
	}
	if len(result.Applied) > 0 {
		fmt.Printf("  advanced to triaging: %v\n", result.Applied)
	}
	if len(result.Queued) > 0 {
		warnText.Printf("  queued for later delivery: %v\n", result.Queued)
	}
}

func printQueue(writes []*secondary.QueuedWrite) {
	if len(writes) == 0 {
		return
	}
	fmt.Printf("\n%-28s %-8s %-10s %-8s %s\n", "ID", "OP", "TARGET", "RETRIES", "STATE")
	fmt.Println("────────────────────────────────────────────────────────────────")
	for _, w := range writes {
		fmt.Printf("%-28s %-8s %-10s %-8d %s\n", w.ID, w.Operation, w.TargetID, w.RetryCount, w.State)
	}
	fmt.Println()
}

func printPrefs(p *primary.Preferences) {
	fmt.Printf("  auto_apply_enabled:   %v\n", p.AutoApplyEnabled)
	fmt.Printf("  auto_apply_threshold: %v\n", p.AutoApplyThreshold)
	fmt.Printf("  impact_weight:        %v\n", p.ImpactWeight)
	fmt.Printf("  frequency_weight:     %v\n", p.FrequencyWeight)
	fmt.Printf("  recency_weight:       %v\n", p.RecencyWeight)
	fmt.Printf("  has_last_preview:     %v\n", p.HasLastPreview)
}
