package triage

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// BuildReport renders the dated markdown triage artifact: summary
// counts, the weight table, the ranked item table, and theme sections
// ordered by summed score.
func BuildReport(selected []Scored, reviewed int, w Weights, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Friction Triage - %s\n\n", now.UTC().Format("2006-01-02"))

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Items reviewed: %d\n", reviewed)
	fmt.Fprintf(&b, "- Items selected: %d\n\n", len(selected))

	b.WriteString("## Scoring weights\n")
	fmt.Fprintf(&b, "- impact: %.1f\n", w.Impact)
	fmt.Fprintf(&b, "- frequency: %.1f\n", w.Frequency)
	fmt.Fprintf(&b, "- recency: %.1f\n\n", w.Recency)

	b.WriteString("## Top items\n")
	b.WriteString("| Score | Status | Impact | Frequency | Domain | Title | Updated |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, item := range selected {
		c := item.Candidate
		domain := "other"
		if len(c.Domains) > 0 {
			domain = strings.Join(c.Domains, ", ")
		}
		title := c.Title
		if title == "" {
			title = "Untitled"
		}
		updated := c.UpdatedAt
		if updated.IsZero() {
			updated = c.CreatedAt
		}
		fmt.Fprintf(&b, "| %.1f | %s | %s | %s | %s | %s | %s |\n",
			item.Score, c.Status, c.Impact, c.Frequency, domain, title,
			updated.UTC().Format("2006-01-02"))
	}
	b.WriteString("\n")

	b.WriteString("## Themes\n")
	clusters := ClusterByTheme(selected)
	themes := make([]string, 0, len(clusters))
	for theme := range clusters {
		themes = append(themes, theme)
	}
	sort.Slice(themes, func(i, j int) bool {
		si, sj := ThemeScore(clusters[themes[i]]), ThemeScore(clusters[themes[j]])
		if si != sj {
			return si > sj
		}
		return themes[i] < themes[j]
	})
	for _, theme := range themes {
		items := clusters[theme]
		fmt.Fprintf(&b, "### %s (%d)\n", theme, len(items))
		for _, item := range items {
			c := item.Candidate
			title := c.Title
			if title == "" {
				title = "Untitled"
			}
			summary := c.Description
			if summary == "" {
				summary = title
			}
			fmt.Fprintf(&b, "- %s: %s\n", title, summary)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
