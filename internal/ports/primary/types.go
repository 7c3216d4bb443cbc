// Package primary defines the inbound ports: service interfaces and the
// request/response types the CLI layer exchanges with the application.
package primary

import (
	"time"

	"github.com/example/aide/internal/core/preview"
)

// Envelope is the uniform response contract every handler produces,
// regardless of intent kind. Errors is non-empty exactly when something
// went wrong; nothing throws past the router boundary.
type Envelope struct {
	Summary     string   `json:"summary"`
	Result      any      `json:"result"`
	NextActions []string `json:"next_actions"`
	Errors      []string `json:"errors"`
}

// NewEnvelope returns an envelope with non-nil slices so serialized
// output always carries next_actions and errors arrays.
func NewEnvelope(summary string) *Envelope {
	return &Envelope{
		Summary:     summary,
		NextActions: []string{},
		Errors:      []string{},
	}
}

// AddError appends an error message.
func (e *Envelope) AddError(msg string) {
	e.Errors = append(e.Errors, msg)
}

// AddNextAction appends a suggested follow-up.
func (e *Envelope) AddNextAction(msg string) {
	e.NextActions = append(e.NextActions, msg)
}

// OK reports whether the envelope carries no errors.
func (e *Envelope) OK() bool {
	return len(e.Errors) == 0
}

// Instruction is one raw operator request. Ephemeral, never persisted
// beyond logging.
type Instruction struct {
	Text      string
	Execute   bool // explicit consent to mutate in this invocation
	AutoApply bool // session-level propose+apply collapse
}

// Preview describes what a mutating intent would do, without doing it.
// One slot lives in the preference store; apply re-validates against
// current remote state before writing.
type Preview struct {
	Token       string                `json:"token"`
	Action      string                `json:"action"` // "create" or "update"
	TargetID    string                `json:"target_id,omitempty"`
	TargetTitle string                `json:"target_title,omitempty"`
	Changes     []preview.FieldChange `json:"changes"`
	Confidence  float64               `json:"confidence"`
	Warnings    []string              `json:"warnings,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// FrictionRequest is one backlog item describing an automation
// opportunity. Owned by the workspace database; aide holds it only long
// enough to compute and apply transitions.
type FrictionRequest struct {
	ID             string    `json:"id"`
	URL            string    `json:"url,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	DesiredOutcome string    `json:"desired_outcome,omitempty"`
	Frequency      string    `json:"frequency"`
	Impact         string    `json:"impact"`
	Domains        []string  `json:"domains,omitempty"`
	Status         string    `json:"status"`
	Source         string    `json:"source,omitempty"`
	Link           string    `json:"link,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Preferences is the operator-visible view of the preference store.
type Preferences struct {
	AutoApplyEnabled   bool    `json:"auto_apply_enabled"`
	AutoApplyThreshold float64 `json:"auto_apply_threshold"`
	ImpactWeight       float64 `json:"impact_weight"`
	FrequencyWeight    float64 `json:"frequency_weight"`
	RecencyWeight      float64 `json:"recency_weight"`
	HasLastPreview     bool    `json:"has_last_preview"`
}
