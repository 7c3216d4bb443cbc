package intent

import (
	"strings"
	"testing"
)

func testContext() Context {
	return Context{
		HasLastPreview: true,
		Backlog: []BacklogEntry{
			{ID: "REQ-1", Title: "Organic Bananas", Status: "new"},
			{ID: "REQ-2", Title: "Weekly meal plan", Status: "triaging"},
		},
		Rules: DefaultRules(),
	}
}

func TestClassifyRoutes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Kind
	}{
		{name: "empty input", text: "   ", want: KindUnknown},
		{name: "apply that", text: "apply that", want: KindApplyLast},
		{name: "search", text: "search for banana requests", want: KindSearch},
		{name: "find", text: "find the meal plan item", want: KindSearch},
		{name: "show backlog", text: "show backlog", want: KindShowBacklog},
		{name: "list wishes", text: "list wishes", want: KindShowBacklog},
		{name: "triage", text: "triage the backlog", want: KindTriage},
		{name: "what should we build", text: "what should we build next?", want: KindTriage},
		{name: "deploy", text: "deploy the latest tools", want: KindDeploy},
		{name: "wish capture", text: "i wish receipts filed themselves", want: KindCreateRecord},
		{name: "enable auto apply", text: "enable auto apply", want: KindSetPrefs},
		{name: "gibberish", text: "quux the flurb", want: KindUnknown},
	}

	ctx := testContext()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text, ctx)
			if got.Kind != tt.want {
				t.Errorf("Classify(%q).Kind = %s, want %s (note: %s)", tt.text, got.Kind, tt.want, got.Note)
			}
		})
	}
}

func TestClassifyNeverPanicsAndUnknownHasNote(t *testing.T) {
	got := Classify("mumble mumble", testContext())
	if got.Kind != KindUnknown {
		t.Fatalf("Kind = %s, want unknown", got.Kind)
	}
	if got.Note == "" {
		t.Error("Unknown intents must carry a clarification note")
	}
}

func TestClassifyTitleCorrection(t *testing.T) {
	got := Classify(`change title 'Organic Bananas' to 'Bananas, Organic'`, testContext())

	if got.Kind != KindUpdateRecord {
		t.Fatalf("Kind = %s, want update (note: %s)", got.Kind, got.Note)
	}
	if got.TargetID != "REQ-1" {
		t.Errorf("TargetID = %s, want REQ-1", got.TargetID)
	}
	if got.Fields[FieldTitle] != "Bananas, Organic" {
		t.Errorf("title field = %q", got.Fields[FieldTitle])
	}
	if got.Confidence < DefaultThreshold {
		t.Errorf("Confidence = %v, want >= %v", got.Confidence, DefaultThreshold)
	}
}

func TestClassifyUnquotedCorrection(t *testing.T) {
	got := Classify("rename weekly meal plan to Monthly meal plan", testContext())

	if got.Kind != KindUpdateRecord {
		t.Fatalf("Kind = %s, want update (note: %s)", got.Kind, got.Note)
	}
	if got.TargetID != "REQ-2" {
		t.Errorf("TargetID = %s, want REQ-2", got.TargetID)
	}
	if got.Fields[FieldTitle] != "Monthly meal plan" {
		t.Errorf("title field = %q", got.Fields[FieldTitle])
	}
}

func TestClassifySetStatus(t *testing.T) {
	got := Classify("set status of 'Organic Bananas' to triaging", testContext())

	if got.Kind != KindUpdateRecord {
		t.Fatalf("Kind = %s, want update (note: %s)", got.Kind, got.Note)
	}
	if got.Fields[FieldStatus] != "triaging" {
		t.Errorf("status field = %q", got.Fields[FieldStatus])
	}
	if got.TargetID != "REQ-1" {
		t.Errorf("TargetID = %s", got.TargetID)
	}
}

func TestClassifyEditWithUnresolvableReference(t *testing.T) {
	got := Classify("change title 'Quantum Socks' to 'Wool Socks'", testContext())

	if got.Kind != KindUnknown {
		t.Fatalf("unresolvable reference should be Unknown, got %s", got.Kind)
	}
	if !strings.Contains(got.Note, "Quantum Socks") {
		t.Errorf("note should name the failed reference: %q", got.Note)
	}
}

func TestClassifyEditTieIsUnknown(t *testing.T) {
	ctx := testContext()
	ctx.Backlog = []BacklogEntry{
		{ID: "REQ-1", Title: "Organic Bananas"},
		{ID: "REQ-2", Title: "Bananas Organic"},
	}

	got := Classify("change title 'Organic Bananas' to 'Fruit'", ctx)
	if got.Kind != KindUnknown {
		t.Fatalf("tied matches must be Unknown, got %s", got.Kind)
	}
}

func TestClassifyApplyLastWithoutPreview(t *testing.T) {
	ctx := testContext()
	ctx.HasLastPreview = false

	got := Classify("apply that", ctx)
	if got.Kind != KindUnknown {
		t.Errorf("apply-that without a stored preview should be Unknown, got %s", got.Kind)
	}
}

func TestClassifyWishCapture(t *testing.T) {
	got := Classify("i wish my receipts were filed automatically", testContext())

	if got.Kind != KindCreateRecord {
		t.Fatalf("Kind = %s, want create", got.Kind)
	}
	if got.Capture == nil {
		t.Fatal("create intent must carry capture fields")
	}
	if got.Capture.Title != "my receipts were filed automatically" {
		t.Errorf("Title = %q", got.Capture.Title)
	}
	if got.Capture.DesiredOutcome != "Resolve: my receipts were filed automatically" {
		t.Errorf("DesiredOutcome = %q", got.Capture.DesiredOutcome)
	}
	if got.Capture.Frequency != "once" || got.Capture.Impact != "low" {
		t.Errorf("defaults = %s/%s, want once/low", got.Capture.Frequency, got.Capture.Impact)
	}
}

func TestClassifyPrefs(t *testing.T) {
	got := Classify("set the auto apply threshold to 0.85", testContext())
	if got.Kind != KindSetPrefs {
		t.Fatalf("Kind = %s, want prefs (note: %s)", got.Kind, got.Note)
	}
	if got.Prefs["auto_apply_threshold"] != "0.85" {
		t.Errorf("threshold = %q", got.Prefs["auto_apply_threshold"])
	}

	got = Classify("disable auto-apply", testContext())
	if got.Prefs["auto_apply_enabled"] != "false" {
		t.Errorf("enabled = %q, want false", got.Prefs["auto_apply_enabled"])
	}
}

func TestMutating(t *testing.T) {
	mutating := []Kind{KindCreateRecord, KindUpdateRecord, KindDeploy, KindApplyLast}
	for _, kind := range mutating {
		if !(Intent{Kind: kind}).Mutating() {
			t.Errorf("%s should be mutating", kind)
		}
	}
	for _, kind := range []Kind{KindSearch, KindShowBacklog, KindTriage, KindSetPrefs, KindUnknown} {
		if (Intent{Kind: kind}).Mutating() {
			t.Errorf("%s should not be mutating", kind)
		}
	}
}

func TestShortTitleClamp(t *testing.T) {
	long := strings.Repeat("friction ", 20)
	short := ShortTitle(long)
	if len([]rune(short)) > TitleLimit {
		t.Errorf("ShortTitle length = %d, want <= %d", len([]rune(short)), TitleLimit)
	}
	if !strings.HasSuffix(short, "...") {
		t.Error("clamped title should end with an ellipsis")
	}
}
