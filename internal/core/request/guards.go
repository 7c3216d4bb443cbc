package request

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanTransition evaluates whether a status move is allowed.
// Rules:
// - Terminal states (shipped, wont-do) admit no transitions out
// - Any non-terminal state may move to wont-do
// - Otherwise moves must go strictly forward along the chain
func CanTransition(from, to Status) GuardResult {
	if IsTerminal(from) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot transition out of terminal status %q", from),
		}
	}

	if to == StatusWontDo {
		return GuardResult{Allowed: true}
	}

	fromRank, ok := chain[from]
	if !ok {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown status %q", from),
		}
	}
	toRank, ok := chain[to]
	if !ok {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown status %q", to),
		}
	}

	if toRank <= fromRank {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("status may only move forward (%s -> %s)", from, to),
		}
	}

	return GuardResult{Allowed: true}
}
