package triage

import "strings"

// Rules controls theme assignment. Domain tags win over keyword
// matches; keyword order matters, earlier entries win.
type Rules struct {
	ThemeByDomain map[string]string
	ThemeKeywords []KeywordTheme
}

// KeywordTheme is one keyword-to-theme rule.
type KeywordTheme struct {
	Keyword string
	Theme   string
}

// DefaultRules returns the built-in theme tables.
func DefaultRules() Rules {
	return Rules{
		ThemeByDomain: map[string]string{
			"calendar":      "calendar hygiene",
			"email":         "email triage",
			"notion":        "workspace hygiene",
			"workspace":     "workspace hygiene",
			"health":        "health admin",
			"errands":       "errands",
			"planning":      "planning",
			"admin":         "admin",
			"relationships": "relationships",
			"home":          "home operations",
			"finance":       "finance admin",
			"other":         "other",
		},
		ThemeKeywords: []KeywordTheme{
			{Keyword: "calendar", Theme: "calendar hygiene"},
			{Keyword: "invite", Theme: "calendar hygiene"},
			{Keyword: "meeting", Theme: "calendar hygiene"},
			{Keyword: "email", Theme: "email triage"},
			{Keyword: "inbox", Theme: "email triage"},
			{Keyword: "notion", Theme: "workspace hygiene"},
			{Keyword: "note", Theme: "workspace hygiene"},
			{Keyword: "health", Theme: "health admin"},
			{Keyword: "doctor", Theme: "health admin"},
			{Keyword: "appointment", Theme: "health admin"},
			{Keyword: "plan", Theme: "planning"},
			{Keyword: "schedule", Theme: "planning"},
			{Keyword: "bill", Theme: "finance admin"},
			{Keyword: "finance", Theme: "finance admin"},
			{Keyword: "home", Theme: "home operations"},
			{Keyword: "relationship", Theme: "relationships"},
		},
	}
}

// Merge layers operator overrides on top of the built-in rules.
// Override keywords are prepended so they win over defaults.
func (r Rules) Merge(domainOverrides map[string]string, keywordOverrides []KeywordTheme) Rules {
	merged := Rules{
		ThemeByDomain: make(map[string]string, len(r.ThemeByDomain)+len(domainOverrides)),
		ThemeKeywords: make([]KeywordTheme, 0, len(r.ThemeKeywords)+len(keywordOverrides)),
	}
	for k, v := range r.ThemeByDomain {
		merged.ThemeByDomain[k] = v
	}
	for k, v := range domainOverrides {
		merged.ThemeByDomain[strings.ToLower(k)] = v
	}
	merged.ThemeKeywords = append(merged.ThemeKeywords, keywordOverrides...)
	merged.ThemeKeywords = append(merged.ThemeKeywords, r.ThemeKeywords...)
	return merged
}

// AssignTheme picks a theme for a candidate: first matching domain tag,
// then first matching keyword over title+description, else "other".
func AssignTheme(c Candidate, rules Rules) string {
	for _, domain := range c.Domains {
		if theme, ok := rules.ThemeByDomain[strings.ToLower(domain)]; ok {
			return theme
		}
	}

	text := strings.ToLower(c.Title + " " + c.Description)
	for _, kt := range rules.ThemeKeywords {
		if strings.Contains(text, kt.Keyword) {
			return kt.Theme
		}
	}
	return "other"
}

// ClusterByTheme groups scored items by theme, preserving rank order
// within each theme.
func ClusterByTheme(items []Scored) map[string][]Scored {
	clusters := make(map[string][]Scored)
	for _, item := range items {
		clusters[item.Theme] = append(clusters[item.Theme], item)
	}
	return clusters
}

// ThemeScore sums the scores in one cluster.
func ThemeScore(items []Scored) float64 {
	var total float64
	for _, item := range items {
		total += item.Score
	}
	return total
}
