// Package triage contains the pure scoring and ranking logic for the
// friction backlog. No I/O, only pure functions over candidates.
package triage

import (
	"sort"
	"time"
)

// DefaultLimit is how many candidates a triage run selects.
const DefaultLimit = 15

// Weights are the operator-configurable scoring weights. The ordinal
// mappings below are reasonable defaults, not a contract; weights and
// rules.yaml let the operator reshape the ranking.
type Weights struct {
	Impact    float64 `json:"impact"`
	Frequency float64 `json:"frequency"`
	Recency   float64 `json:"recency"`
}

// DefaultWeights returns 1.0 for every dimension.
func DefaultWeights() Weights {
	return Weights{Impact: 1.0, Frequency: 1.0, Recency: 1.0}
}

var impactScore = map[string]int{
	"low":    1,
	"medium": 2,
	"high":   3,
}

var frequencyScore = map[string]int{
	"once":               1,
	"weekly":             2,
	"daily":              3,
	"many-times-per-day": 4,
}

// Candidate is the triage view of a friction request.
type Candidate struct {
	ID          string
	Title       string
	Description string
	Impact      string
	Frequency   string
	Domains     []string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Scored pairs a candidate with its computed score and theme. Scores
// are derived per run and never stored.
type Scored struct {
	Candidate Candidate
	Score     float64
	Theme     string
}

// RecencyScore buckets age into {2, 1, 0}: within a week, within a
// month, older. Newer requests surface current pain first.
func RecencyScore(ref, now time.Time) int {
	if ref.IsZero() {
		return 0
	}
	age := now.Sub(ref)
	switch {
	case age <= 7*24*time.Hour:
		return 2
	case age <= 30*24*time.Hour:
		return 1
	default:
		return 0
	}
}

// Score computes the weighted priority of a candidate. Unknown impact
// or frequency values fall back to the lowest ordinal. Recency ages off
// the last update, falling back to creation time.
func Score(c Candidate, w Weights, now time.Time) float64 {
	impact, ok := impactScore[c.Impact]
	if !ok {
		impact = 1
	}
	frequency, ok := frequencyScore[c.Frequency]
	if !ok {
		frequency = 1
	}
	ref := c.UpdatedAt
	if ref.IsZero() {
		ref = c.CreatedAt
	}
	recency := RecencyScore(ref, now)

	return float64(impact)*w.Impact + float64(frequency)*w.Frequency + float64(recency)*w.Recency
}

// Rank scores and orders candidates: score descending, then creation
// time descending, then ID ascending. The ordering is total, so
// repeated runs over identical inputs agree.
func Rank(candidates []Candidate, w Weights, rules Rules, now time.Time) []Scored {
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{
			Candidate: c,
			Score:     Score(c, w, now),
			Theme:     AssignTheme(c, rules),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Candidate.CreatedAt.Equal(scored[j].Candidate.CreatedAt) {
			return scored[i].Candidate.CreatedAt.After(scored[j].Candidate.CreatedAt)
		}
		return scored[i].Candidate.ID < scored[j].Candidate.ID
	})

	return scored
}

// Select returns the top limit entries of a ranked list.
func Select(ranked []Scored, limit int) []Scored {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(ranked) <= limit {
		return ranked
	}
	return ranked[:limit]
}
