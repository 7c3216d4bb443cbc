// Package app contains the application services: the command router,
// the safety gate, capture, triage, queue, sync, and preferences. It
// orchestrates the core packages against the secondary ports and
// produces envelopes for the CLI layer.
package app

import (
	"sort"
	"strings"
	"time"

	"github.com/example/aide/internal/core/triage"
	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

// Preference store keys. The preview slot and the tunables share one
// table; keys are the stable contract.
const (
	prefKeyLastPreview        = "last_preview"
	prefKeyAutoApplyEnabled   = "auto_apply_enabled"
	prefKeyAutoApplyThreshold = "auto_apply_threshold"
	prefKeyImpactWeight       = "impact_weight"
	prefKeyFrequencyWeight    = "frequency_weight"
	prefKeyRecencyWeight      = "recency_weight"
)

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func toFriction(r *secondary.RequestRecord) *primary.FrictionRequest {
	return &primary.FrictionRequest{
		ID:             r.ID,
		URL:            r.URL,
		Title:          r.Title,
		Description:    r.Description,
		DesiredOutcome: r.DesiredOutcome,
		Frequency:      r.Frequency,
		Impact:         r.Impact,
		Domains:        r.Domains,
		Status:         r.Status,
		Source:         r.Source,
		Link:           r.Link,
		Notes:          r.Notes,
		CreatedAt:      parseTimestamp(r.CreatedAt),
		UpdatedAt:      parseTimestamp(r.UpdatedAt),
	}
}

func toCandidate(r *secondary.RequestRecord) triage.Candidate {
	return triage.Candidate{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Impact:      r.Impact,
		Frequency:   r.Frequency,
		Domains:     r.Domains,
		Status:      r.Status,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
}

// recordFields projects a record onto its updatable field map, the
// shape diffs are computed over.
func recordFields(r *secondary.RequestRecord) map[string]string {
	return map[string]string{
		secondary.FieldTitle:          r.Title,
		secondary.FieldDescription:    r.Description,
		secondary.FieldDesiredOutcome: r.DesiredOutcome,
		secondary.FieldStatus:         r.Status,
		secondary.FieldFrequency:      r.Frequency,
		secondary.FieldImpact:         r.Impact,
		secondary.FieldDomains:        strings.Join(r.Domains, ","),
		secondary.FieldNotes:          r.Notes,
	}
}

// sortedKeys returns map keys in stable order for summaries.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
