package app

import (
	"context"
	"strings"
	"testing"

	"github.com/example/aide/internal/ports/primary"
)

func captureFixture() (*CaptureApp, *mockWorkspace, *mockPrefs, *mockQueue) {
	workspace := newMockWorkspace()
	prefs := newMockPrefs()
	queue := &mockQueue{}
	gate := testGate(workspace, prefs, queue, &mockAudit{}, nil)
	return NewCaptureApp(gate, nil), workspace, prefs, queue
}

func TestCapturePreviewOnly(t *testing.T) {
	app, workspace, prefs, _ := captureFixture()

	env := app.Capture(context.Background(), primary.CaptureRequest{
		Complaint: "renewing the car registration takes forever",
		Frequency: "weekly",
		Impact:    "medium",
	})
	if !env.OK() {
		t.Fatalf("errors = %v", env.Errors)
	}

	if len(workspace.createCalls) != 0 {
		t.Error("preview-only capture must not create a record")
	}
	if _, ok := prefs.values[prefKeyLastPreview]; !ok {
		t.Error("preview should be stored for apply-that")
	}
	if !strings.HasPrefix(env.Summary, "Would capture") {
		t.Errorf("Summary = %q", env.Summary)
	}
}

func TestCaptureExecuteCreates(t *testing.T) {
	app, workspace, prefs, _ := captureFixture()

	env := app.Capture(context.Background(), primary.CaptureRequest{
		Complaint: "renewing the car registration takes forever",
		Execute:   true,
	})
	if !env.OK() {
		t.Fatalf("errors = %v", env.Errors)
	}

	if len(workspace.createCalls) != 1 {
		t.Fatalf("creates = %d, want 1", len(workspace.createCalls))
	}
	created := workspace.records["REQ-1"]
	if created.Status != "new" || created.Frequency != "once" || created.Impact != "low" {
		t.Errorf("defaults = %s/%s/%s", created.Status, created.Frequency, created.Impact)
	}
	if created.DesiredOutcome == "" {
		t.Error("desired outcome should be inferred when omitted")
	}
	if _, ok := prefs.values[prefKeyLastPreview]; ok {
		t.Error("slot should be consumed by the immediate apply")
	}
}

func TestCaptureQueuedWhenOffline(t *testing.T) {
	app, workspace, _, queue := captureFixture()
	workspace.unreachable = true

	env := app.Capture(context.Background(), primary.CaptureRequest{
		Complaint: "renewing the car registration takes forever",
		Execute:   true,
	})
	if !env.OK() {
		t.Fatalf("errors = %v", env.Errors)
	}
	if !strings.Contains(env.Summary, "queued") {
		t.Errorf("Summary = %q", env.Summary)
	}
	if len(queue.entries) != 1 {
		t.Fatalf("queue entries = %d, want 1", len(queue.entries))
	}
}

func TestCaptureRejectsUnknownOrdinals(t *testing.T) {
	app, _, _, _ := captureFixture()

	env := app.Capture(context.Background(), primary.CaptureRequest{
		Complaint: "something",
		Frequency: "hourly",
	})
	if env.OK() {
		t.Error("unknown frequency must be rejected")
	}

	env = app.Capture(context.Background(), primary.CaptureRequest{
		Complaint: "something",
		Impact:    "catastrophic",
	})
	if env.OK() {
		t.Error("unknown impact must be rejected")
	}
}

func TestCaptureEmptyComplaint(t *testing.T) {
	app, _, _, _ := captureFixture()
	env := app.Capture(context.Background(), primary.CaptureRequest{Complaint: "   "})
	if env.OK() {
		t.Error("empty complaint must be rejected")
	}
}
