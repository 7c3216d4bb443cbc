package app

import (
	"context"
	"testing"

	"github.com/example/aide/internal/core/triage"
)

func prefsFixture() (*PrefsApp, *mockPrefs) {
	prefs := newMockPrefs()
	gate := testGate(newMockWorkspace(), prefs, &mockQueue{}, &mockAudit{}, nil)
	return NewPrefsApp(prefs, gate), prefs
}

func TestShowDefaults(t *testing.T) {
	app, _ := prefsFixture()

	got, err := app.Show(context.Background())
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if got.AutoApplyEnabled {
		t.Error("auto-apply should default to off")
	}
	if got.AutoApplyThreshold != defaultAutoApplyThreshold {
		t.Errorf("threshold = %v", got.AutoApplyThreshold)
	}
	defaults := triage.DefaultWeights()
	if got.ImpactWeight != defaults.Impact || got.FrequencyWeight != defaults.Frequency || got.RecencyWeight != defaults.Recency {
		t.Errorf("weights = %+v", got)
	}
	if got.HasLastPreview {
		t.Error("no preview stored yet")
	}
}

func TestSetAndShow(t *testing.T) {
	app, _ := prefsFixture()
	ctx := context.Background()

	if err := app.Set(ctx, prefKeyAutoApplyEnabled, "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := app.Set(ctx, prefKeyAutoApplyThreshold, "0.8"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := app.Set(ctx, prefKeyImpactWeight, "3"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := app.Show(ctx)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if !got.AutoApplyEnabled || got.AutoApplyThreshold != 0.8 || got.ImpactWeight != 3 {
		t.Errorf("prefs = %+v", got)
	}
}

func TestSetValidation(t *testing.T) {
	app, _ := prefsFixture()
	ctx := context.Background()

	cases := []struct{ key, value string }{
		{"unknown_key", "1"},
		{prefKeyAutoApplyEnabled, "maybe"},
		{prefKeyAutoApplyThreshold, "1.5"},
		{prefKeyAutoApplyThreshold, "-0.1"},
		{prefKeyImpactWeight, "0"},
		{prefKeyImpactWeight, "abc"},
		{prefKeyLastPreview, "{}"}, // gate-owned, not settable
	}
	for _, tt := range cases {
		if err := app.Set(ctx, tt.key, tt.value); err == nil {
			t.Errorf("Set(%s, %s) should fail", tt.key, tt.value)
		}
	}
}
