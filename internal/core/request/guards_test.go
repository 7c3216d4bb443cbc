package request

import (
	"math/rand"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name        string
		from        Status
		to          Status
		wantAllowed bool
	}{
		{name: "new to triaging", from: StatusNew, to: StatusTriaging, wantAllowed: true},
		{name: "triaging to spec-ready", from: StatusTriaging, to: StatusSpecReady, wantAllowed: true},
		{name: "spec-ready to building", from: StatusSpecReady, to: StatusBuilding, wantAllowed: true},
		{name: "building to shipped", from: StatusBuilding, to: StatusShipped, wantAllowed: true},
		{name: "forward skip allowed", from: StatusNew, to: StatusBuilding, wantAllowed: true},
		{name: "any state to wont-do", from: StatusSpecReady, to: StatusWontDo, wantAllowed: true},
		{name: "no backward move", from: StatusBuilding, to: StatusTriaging, wantAllowed: false},
		{name: "no self transition", from: StatusTriaging, to: StatusTriaging, wantAllowed: false},
		{name: "nothing out of shipped", from: StatusShipped, to: StatusWontDo, wantAllowed: false},
		{name: "nothing out of wont-do", from: StatusWontDo, to: StatusNew, wantAllowed: false},
		{name: "unknown source status", from: Status("bogus"), to: StatusTriaging, wantAllowed: false},
		{name: "unknown target status", from: StatusNew, to: Status("bogus"), wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanTransition(tt.from, tt.to)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanTransition(%s, %s).Allowed = %v, want %v",
					tt.from, tt.to, result.Allowed, tt.wantAllowed)
			}
			if !result.Allowed && result.Reason == "" {
				t.Error("disallowed transition must carry a reason")
			}
		})
	}
}

// Random transition sequences must never escape a terminal state.
func TestTransitionSequencesRespectTerminalStates(t *testing.T) {
	all := []Status{
		StatusNew, StatusTriaging, StatusSpecReady,
		StatusBuilding, StatusShipped, StatusWontDo,
	}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		current := StatusNew
		for step := 0; step < 20; step++ {
			next := all[rng.Intn(len(all))]
			result := CanTransition(current, next)
			if IsTerminal(current) && result.Allowed {
				t.Fatalf("run %d: transition allowed out of terminal %s to %s", run, current, next)
			}
			if result.Allowed {
				current = next
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"new", "triaging", "spec-ready", "building", "shipped", "wont-do"} {
		if _, err := ParseStatus(raw); err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", raw, err)
		}
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Error("ParseStatus should reject unknown statuses")
	}
}

func TestNextStatus(t *testing.T) {
	next, ok := NextStatus(StatusNew)
	if !ok || next != StatusTriaging {
		t.Errorf("NextStatus(new) = %s, %v; want triaging, true", next, ok)
	}
	if _, ok := NextStatus(StatusShipped); ok {
		t.Error("shipped has no next status")
	}
	if _, ok := NextStatus(StatusWontDo); ok {
		t.Error("wont-do has no next status")
	}
}
