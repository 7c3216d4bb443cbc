// Package preview contains the pure diff logic behind the safety gate.
// No I/O, only functions over field maps.
package preview

import (
	"sort"
	"time"
)

// TTL is how long a persisted preview stays applyable by token. Apply
// always re-validates against current remote state, so the TTL only
// bounds how old a consented diff may be.
const TTL = 24 * time.Hour

// FieldChange is one before/after pair in a computed diff.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Diff computes the field-level changes desired would apply to current,
// ordered by field name. Fields whose desired value equals the current
// value are omitted: applying a no-op is not a mutation.
func Diff(current, desired map[string]string) []FieldChange {
	fields := make([]string, 0, len(desired))
	for field := range desired {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var changes []FieldChange
	for _, field := range fields {
		after := desired[field]
		before := current[field]
		if before == after {
			continue
		}
		changes = append(changes, FieldChange{Field: field, Before: before, After: after})
	}
	return changes
}

// Equal reports whether two diffs describe the same changes.
func Equal(a, b []FieldChange) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsStale reports whether a preview created at createdAt has outlived
// the TTL at now.
func IsStale(createdAt, now time.Time) bool {
	return now.Sub(createdAt) > TTL
}
