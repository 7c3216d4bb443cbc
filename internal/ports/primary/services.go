package primary

import "context"

// RouterService is the top-level entry: classify an instruction,
// dispatch to the matching handler, and wrap the outcome in an
// Envelope. It never panics past its boundary; failures land in the
// envelope's Errors.
type RouterService interface {
	Route(ctx context.Context, instr Instruction) *Envelope
}

// CaptureRequest contains parameters for capturing a friction request.
type CaptureRequest struct {
	Complaint      string
	DesiredOutcome string
	Frequency      string
	Impact         string
	Domains        []string
	Source         string
	Link           string
	Notes          string
	Execute        bool
}

// CaptureService records new friction requests through the safety gate,
// with offline queue fallback when the workspace is unreachable.
type CaptureService interface {
	Capture(ctx context.Context, req CaptureRequest) *Envelope
}

// TriageRequest contains parameters for one triage run.
type TriageRequest struct {
	Limit           int
	ImpactWeight    float64 // <= 0 means "use configured default"
	FrequencyWeight float64
	RecencyWeight   float64
	Apply           bool
}

// RankedRequest is one scored backlog item in a triage result.
type RankedRequest struct {
	Request        *FrictionRequest `json:"request"`
	Score          float64          `json:"score"`
	Theme          string           `json:"theme"`
	ProposedStatus string           `json:"proposed_status,omitempty"`
}

// TriageResult is the structured payload of a triage envelope.
type TriageResult struct {
	Reviewed   int              `json:"reviewed"`
	Selected   []*RankedRequest `json:"selected"`
	ReportPath string           `json:"report_path,omitempty"`
	FromMirror bool             `json:"from_mirror"`
	Applied    []string         `json:"applied,omitempty"`
	Queued     []string         `json:"queued,omitempty"`
}

// TriageService scores and advances the friction backlog.
type TriageService interface {
	Triage(ctx context.Context, req TriageRequest) *Envelope
}

// FlushResult is the structured payload of a queue flush envelope.
type FlushResult struct {
	Succeeded int      `json:"succeeded"`
	Requeued  int      `json:"requeued"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// QueueService manages the offline durable queue.
type QueueService interface {
	Flush(ctx context.Context) *Envelope
	List(ctx context.Context) *Envelope
}

// SyncService replaces the local mirror with the remote backlog.
type SyncService interface {
	Sync(ctx context.Context) *Envelope
}

// PrefsService reads and writes operator preferences.
type PrefsService interface {
	Show(ctx context.Context) (*Preferences, error)
	Set(ctx context.Context, key, value string) error
}
