// Package request contains the pure business logic for friction
// request lifecycles. No I/O, only pure functions.
package request

import "fmt"

// Status represents the lifecycle state of a friction request.
type Status string

const (
	StatusNew       Status = "new"
	StatusTriaging  Status = "triaging"
	StatusSpecReady Status = "spec-ready"
	StatusBuilding  Status = "building"
	StatusShipped   Status = "shipped"
	StatusWontDo    Status = "wont-do"
)

// chain orders the forward path. WontDo sits outside the chain and is
// reachable from any non-terminal state.
var chain = map[Status]int{
	StatusNew:       0,
	StatusTriaging:  1,
	StatusSpecReady: 2,
	StatusBuilding:  3,
	StatusShipped:   4,
}

// Frequency values accepted on a friction request.
const (
	FrequencyOnce   = "once"
	FrequencyWeekly = "weekly"
	FrequencyDaily  = "daily"
	FrequencyMany   = "many-times-per-day"
)

// Impact values accepted on a friction request.
const (
	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := chain[s]; ok {
		return s, nil
	}
	if s == StatusWontDo {
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// IsTerminal reports whether no transition may leave s.
func IsTerminal(s Status) bool {
	return s == StatusShipped || s == StatusWontDo
}

// InitialStatus returns the status for a freshly captured request.
func InitialStatus() Status {
	return StatusNew
}

// NextStatus returns the single forward step from s, if one exists.
func NextStatus(s Status) (Status, bool) {
	switch s {
	case StatusNew:
		return StatusTriaging, true
	case StatusTriaging:
		return StatusSpecReady, true
	case StatusSpecReady:
		return StatusBuilding, true
	case StatusBuilding:
		return StatusShipped, true
	}
	return "", false
}
