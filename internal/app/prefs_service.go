package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/example/aide/internal/core/triage"
	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

// defaultAutoApplyThreshold is the confidence floor for collapsing
// propose+apply when auto-apply is enabled.
const defaultAutoApplyThreshold = 0.9

// settableKeys are the preference keys the operator may write, with a
// validator per key. The preview slot is gate-owned and not settable.
var settableKeys = map[string]func(string) error{
	prefKeyAutoApplyEnabled:   validateBool,
	prefKeyAutoApplyThreshold: validateUnitFloat,
	prefKeyImpactWeight:       validatePositiveFloat,
	prefKeyFrequencyWeight:    validatePositiveFloat,
	prefKeyRecencyWeight:      validatePositiveFloat,
}

func validateBool(v string) error {
	if _, err := strconv.ParseBool(v); err != nil {
		return fmt.Errorf("expected true or false, got %q", v)
	}
	return nil
}

func validateUnitFloat(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		return fmt.Errorf("expected a number in [0,1], got %q", v)
	}
	return nil
}

func validatePositiveFloat(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("expected a positive number, got %q", v)
	}
	return nil
}

// PrefsApp implements primary.PrefsService over the preference store.
type PrefsApp struct {
	prefs secondary.PreferenceStore
	gate  *GateService
}

// NewPrefsApp creates the preferences service.
func NewPrefsApp(prefs secondary.PreferenceStore, gate *GateService) *PrefsApp {
	return &PrefsApp{prefs: prefs, gate: gate}
}

// Show returns the effective preferences: stored values over defaults.
func (s *PrefsApp) Show(ctx context.Context) (*primary.Preferences, error) {
	weights, err := storedWeights(ctx, s.prefs)
	if err != nil {
		return nil, err
	}

	out := &primary.Preferences{
		AutoApplyThreshold: defaultAutoApplyThreshold,
		ImpactWeight:       weights.Impact,
		FrequencyWeight:    weights.Frequency,
		RecencyWeight:      weights.Recency,
		HasLastPreview:     s.gate.HasLastPreview(ctx),
	}

	if raw, ok, err := s.prefs.Get(ctx, prefKeyAutoApplyEnabled); err != nil {
		return nil, err
	} else if ok {
		out.AutoApplyEnabled, _ = strconv.ParseBool(raw)
	}
	if raw, ok, err := s.prefs.Get(ctx, prefKeyAutoApplyThreshold); err != nil {
		return nil, err
	} else if ok {
		if f, perr := strconv.ParseFloat(raw, 64); perr == nil {
			out.AutoApplyThreshold = f
		}
	}
	return out, nil
}

// Set validates and stores one preference.
func (s *PrefsApp) Set(ctx context.Context, key, value string) error {
	validate, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown preference %q", key)
	}
	if err := validate(value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return s.prefs.Set(ctx, key, value)
}

// AutoApplyFloor returns whether auto-apply is enabled and its
// confidence threshold.
func (s *PrefsApp) AutoApplyFloor(ctx context.Context) (bool, float64, error) {
	prefs, err := s.Show(ctx)
	if err != nil {
		return false, 0, err
	}
	return prefs.AutoApplyEnabled, prefs.AutoApplyThreshold, nil
}

// storedWeights resolves scoring weights: built-in defaults overridden
// by any stored preferences.
func storedWeights(ctx context.Context, prefs secondary.PreferenceStore) (triage.Weights, error) {
	weights := triage.DefaultWeights()
	overrides := map[string]*float64{
		prefKeyImpactWeight:    &weights.Impact,
		prefKeyFrequencyWeight: &weights.Frequency,
		prefKeyRecencyWeight:   &weights.Recency,
	}
	for key, target := range overrides {
		raw, ok, err := prefs.Get(ctx, key)
		if err != nil {
			return weights, err
		}
		if !ok {
			continue
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
			*target = f
		}
	}
	return weights, nil
}
