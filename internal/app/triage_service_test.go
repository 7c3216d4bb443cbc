package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/aide/internal/core/triage"
	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

func triageFixture(records ...*secondary.RequestRecord) (*TriageApp, *mockWorkspace, *mockMirror, *mockReports, *mockQueue) {
	workspace := newMockWorkspace(records...)
	mirror := &mockMirror{}
	reports := &mockReports{}
	queue := &mockQueue{}
	app := NewTriageApp(workspace, mirror, reports, newMockPrefs(), queue, &mockAudit{}, triage.DefaultRules(), nil)
	app.now = func() time.Time { return testNow }
	return app, workspace, mirror, reports, queue
}

func openRecord(id, title, impact, frequency, status string, created time.Time) *secondary.RequestRecord {
	return &secondary.RequestRecord{
		ID:        id,
		Title:     title,
		Impact:    impact,
		Frequency: frequency,
		Status:    status,
		CreatedAt: created.Format(time.RFC3339),
	}
}

func TestTriageRanksAndReports(t *testing.T) {
	app, _, _, reports, _ := triageFixture(
		openRecord("REQ-1", "File receipts", "low", "once", "new", testNow.Add(-40*24*time.Hour)),
		openRecord("REQ-2", "Plan meals weekly", "high", "daily", "new", testNow.Add(-2*24*time.Hour)),
		openRecord("REQ-3", "Shipped thing", "high", "daily", "shipped", testNow),
	)

	env := app.Triage(context.Background(), primary.TriageRequest{})
	if !env.OK() {
		t.Fatalf("errors = %v", env.Errors)
	}

	result := env.Result.(*primary.TriageResult)
	if result.Reviewed != 2 {
		t.Errorf("Reviewed = %d, want 2 (terminal states excluded)", result.Reviewed)
	}
	if result.Selected[0].Request.ID != "REQ-2" {
		t.Errorf("top item = %s, want REQ-2", result.Selected[0].Request.ID)
	}
	if result.Selected[0].ProposedStatus != "triaging" {
		t.Errorf("ProposedStatus = %q", result.Selected[0].ProposedStatus)
	}
	if result.FromMirror {
		t.Error("live fetch should not be marked as mirror")
	}

	if len(reports.names) != 1 || reports.names[0] != "triage-2026-03-10.md" {
		t.Errorf("report names = %v", reports.names)
	}
	if !strings.Contains(reports.contents[0], "Plan meals weekly") {
		t.Error("report should list the selected items")
	}
	if result.ReportPath == "" {
		t.Error("ReportPath should be set")
	}
}

func TestTriageApplyAdvancesOnlyNewItems(t *testing.T) {
	app, workspace, _, _, _ := triageFixture(
		openRecord("REQ-1", "File receipts", "high", "daily", "new", testNow),
		openRecord("REQ-2", "Plan meals", "high", "daily", "triaging", testNow),
	)

	env := app.Triage(context.Background(), primary.TriageRequest{Apply: true})
	if !env.OK() {
		t.Fatalf("errors = %v", env.Errors)
	}

	result := env.Result.(*primary.TriageResult)
	if len(result.Applied) != 1 || result.Applied[0] != "REQ-1" {
		t.Errorf("Applied = %v", result.Applied)
	}
	if workspace.records["REQ-1"].Status != "triaging" {
		t.Errorf("REQ-1 status = %q", workspace.records["REQ-1"].Status)
	}
	if workspace.records["REQ-2"].Status != "triaging" || len(workspace.updateCalls) != 1 {
		t.Error("items already in triaging must not be written again")
	}
}

func TestTriageApplyRechecksStatusBeforeWrite(t *testing.T) {
	// The backlog snapshot still says new, but the record was shipped
	// externally between the fetch and the write.
	app, workspace, _, _, _ := triageFixture(
		openRecord("REQ-1", "File receipts", "high", "daily", "shipped", testNow),
	)
	workspace.queryResults = []*secondary.RequestRecord{
		openRecord("REQ-1", "File receipts", "high", "daily", "new", testNow),
	}

	env := app.Triage(context.Background(), primary.TriageRequest{Apply: true})
	if env.OK() {
		t.Fatal("a concurrently shipped record should surface as an error")
	}

	if len(workspace.updateCalls) != 0 {
		t.Errorf("updates = %+v, want none", workspace.updateCalls)
	}
	if workspace.records["REQ-1"].Status != "shipped" {
		t.Errorf("status = %q, shipped records must stay shipped", workspace.records["REQ-1"].Status)
	}
	result := env.Result.(*primary.TriageResult)
	if len(result.Applied) != 0 || len(result.Queued) != 0 {
		t.Errorf("Applied = %v, Queued = %v", result.Applied, result.Queued)
	}
}

func TestTriageApplyQueuesWhenWriteUnreachable(t *testing.T) {
	app, workspace, mirror, _, queue := triageFixture()
	mirror.snapshot = &secondary.MirrorSnapshot{Requests: []*secondary.RequestRecord{
		openRecord("REQ-1", "File receipts", "high", "daily", "new", testNow),
	}}
	workspace.unreachable = true

	env := app.Triage(context.Background(), primary.TriageRequest{Apply: true})
	if !env.OK() {
		t.Fatalf("errors = %v", env.Errors)
	}

	result := env.Result.(*primary.TriageResult)
	if !result.FromMirror {
		t.Error("unreachable workspace should fall back to the mirror")
	}
	if len(result.Queued) != 1 || result.Queued[0] != "REQ-1" {
		t.Errorf("Queued = %v", result.Queued)
	}
	if len(queue.entries) != 1 || queue.entries[0].Operation != secondary.QueueOpUpdate {
		t.Errorf("queue = %+v", queue.entries)
	}
}

func TestTriageUnreachableWithoutMirrorFails(t *testing.T) {
	app, workspace, _, _, _ := triageFixture()
	workspace.unreachable = true

	env := app.Triage(context.Background(), primary.TriageRequest{})
	if env.OK() {
		t.Fatal("no mirror and no workspace should be an error")
	}
}

func TestTriageLimit(t *testing.T) {
	records := make([]*secondary.RequestRecord, 0, 20)
	for i := 0; i < 20; i++ {
		records = append(records,
			openRecord(string(rune('A'+i))+"-REQ", "Item", "low", "once", "new", testNow))
	}
	app, _, _, _, _ := triageFixture(records...)

	env := app.Triage(context.Background(), primary.TriageRequest{Limit: 5})
	result := env.Result.(*primary.TriageResult)
	if len(result.Selected) != 5 || result.Reviewed != 20 {
		t.Errorf("selected = %d, reviewed = %d", len(result.Selected), result.Reviewed)
	}
}

func TestTriageWeightOverridesFromFlags(t *testing.T) {
	app, _, _, _, _ := triageFixture(
		// Fresh but low impact vs stale but high impact.
		openRecord("REQ-1", "Fresh minor", "low", "once", "new", testNow.Add(-time.Hour)),
		openRecord("REQ-2", "Old major", "high", "once", "new", testNow.Add(-90*24*time.Hour)),
	)

	// Recency dominating puts the fresh item first.
	env := app.Triage(context.Background(), primary.TriageRequest{RecencyWeight: 50})
	result := env.Result.(*primary.TriageResult)
	if result.Selected[0].Request.ID != "REQ-1" {
		t.Errorf("with heavy recency weight, top = %s, want REQ-1", result.Selected[0].Request.ID)
	}

	// Impact dominating flips the order.
	env = app.Triage(context.Background(), primary.TriageRequest{ImpactWeight: 50})
	result = env.Result.(*primary.TriageResult)
	if result.Selected[0].Request.ID != "REQ-2" {
		t.Errorf("with heavy impact weight, top = %s, want REQ-2", result.Selected[0].Request.ID)
	}
}
