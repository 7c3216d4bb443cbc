package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var applyLastPhrases = []string{
	"apply that",
	"apply last preview",
	"apply the last preview",
	"apply last correction",
	"apply it",
}

var wishPhrases = []string{
	"i wish",
	"wish i could",
	"i wish you could",
	"capture:",
}

var (
	changeToPattern  = regexp.MustCompile(`(?i)(?:change|correct|fix|update|rename)\s+(.+?)\s+to\s+(.+)`)
	setStatusPattern = regexp.MustCompile(`(?i)set\s+status\s+(?:of\s+(.+?)\s+)?to\s+(.+)`)
	setDescPattern   = regexp.MustCompile(`(?i)set\s+description\s+(?:of\s+(.+?)\s+)?to\s+(.+)`)
	addTagPattern    = regexp.MustCompile(`(?i)(?:add|set)\s+tags?\s+(.+?)(?:\s+(?:to|on)\s+(.+))?$`)
	thresholdPattern = regexp.MustCompile(`(?i)auto[- ]apply threshold to\s*([0-9.]+)`)
)

// Classify maps an instruction onto the closed action space. It never
// returns an error: when no rule matches confidently the result is
// Unknown with a note, because asking for clarification beats silently
// doing the wrong mutation.
func Classify(text string, ctx Context) Intent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Intent{Kind: KindUnknown, Note: "empty instruction"}
	}
	lower := strings.ToLower(trimmed)

	rules := ctx.Rules
	if rules.Threshold == 0 && len(rules.EditWords) == 0 {
		rules = DefaultRules()
	}

	if isApplyLast(lower) {
		if !ctx.HasLastPreview {
			return Intent{Kind: KindUnknown, Note: "no preview to apply; run the mutation first to compute one"}
		}
		return Intent{Kind: KindApplyLast, Confidence: 1.0}
	}

	if containsAny(lower, rules.PrefsWords) {
		return classifyPrefs(lower)
	}

	if it, ok := classifyEdit(trimmed, lower, ctx, rules); ok {
		return it
	}

	if phrase, ok := matchWishPhrase(lower); ok {
		return classifyWish(trimmed, phrase)
	}

	if containsAny(lower, rules.DeployWords) {
		return Intent{Kind: KindDeploy, Confidence: 1.0}
	}

	if containsAny(lower, rules.TriageWords) {
		return Intent{Kind: KindTriage, Confidence: 1.0}
	}

	if containsAny(lower, rules.SearchWords) {
		return Intent{
			Kind:       KindSearch,
			Query:      extractQuery(trimmed, rules.SearchWords),
			Confidence: 1.0,
		}
	}

	if containsAny(lower, rules.ListWords) {
		return Intent{Kind: KindShowBacklog, Confidence: 1.0}
	}

	return Intent{Kind: KindUnknown, Note: "no route matched; try search, backlog, triage, capture, or an edit phrased as \"change X to Y\""}
}

func isApplyLast(lower string) bool {
	clean := strings.TrimSpace(lower)
	for _, phrase := range applyLastPhrases {
		if clean == phrase {
			return true
		}
	}
	return false
}

func classifyPrefs(lower string) Intent {
	prefs := make(map[string]string)
	if strings.Contains(lower, "enable auto apply") || strings.Contains(lower, "enable auto-apply") {
		prefs["auto_apply_enabled"] = "true"
	}
	if strings.Contains(lower, "disable auto apply") || strings.Contains(lower, "disable auto-apply") {
		prefs["auto_apply_enabled"] = "false"
	}
	if m := thresholdPattern.FindStringSubmatch(lower); m != nil {
		if value, err := strconv.ParseFloat(m[1], 64); err == nil {
			if value < 0 {
				value = 0
			}
			if value > 1 {
				value = 1
			}
			prefs["auto_apply_threshold"] = strconv.FormatFloat(value, 'f', -1, 64)
		}
	}
	if len(prefs) == 0 {
		return Intent{Kind: KindUnknown, Note: "auto-apply request not understood; say enable/disable or give a threshold"}
	}
	return Intent{Kind: KindSetPrefs, Prefs: prefs, Confidence: 1.0}
}

// classifyEdit recognizes field corrections. Quoted pairs win
// ("change title 'Old' to 'New'"), then bare change-X-to-Y phrasing,
// then set status/description/tag forms.
func classifyEdit(text, lower string, ctx Context, rules Rules) (Intent, bool) {
	if !containsAny(lower, rules.EditWords) {
		return Intent{}, false
	}

	fields := make(map[string]string)
	var reference string

	if m := setStatusPattern.FindStringSubmatch(text); m != nil {
		fields[FieldStatus] = strings.ToLower(stripQuotes(m[2]))
		reference = stripQuotes(m[1])
	} else if m := setDescPattern.FindStringSubmatch(text); m != nil {
		fields[FieldDescription] = stripQuotes(m[2])
		reference = stripQuotes(m[1])
	} else if m := addTagPattern.FindStringSubmatch(text); m != nil {
		tags := splitTags(stripQuotes(m[1]))
		if len(tags) > 0 {
			fields[FieldDomains] = strings.Join(tags, ",")
			reference = stripQuotes(m[2])
		}
	} else {
		quoted := quotedPhrases(text)
		if len(quoted) >= 2 && changeToPattern.MatchString(text) {
			reference = quoted[0]
			fields[FieldTitle] = quoted[1]
		} else if m := changeToPattern.FindStringSubmatch(text); m != nil {
			old := stripQuotes(strings.TrimPrefix(strings.TrimSpace(m[1]), "title "))
			old = strings.TrimPrefix(old, "the title ")
			reference = old
			fields[FieldTitle] = stripQuotes(m[2])
		}
	}

	if len(fields) == 0 {
		return Intent{}, false
	}

	it := Intent{Kind: KindUpdateRecord, Fields: fields, TargetTitle: reference}
	if reference == "" {
		it.Kind = KindUnknown
		it.Note = "edit detected but no record reference found; name the record title"
		return it, true
	}

	match, ok := ResolveTitle(reference, ctx.Backlog, rules.Threshold)
	if !ok {
		it.Kind = KindUnknown
		it.Note = fmt.Sprintf("no backlog record matches %q confidently; run sync or name the exact title", reference)
		return it, true
	}
	if match.Tied {
		it.Kind = KindUnknown
		it.Note = fmt.Sprintf("multiple records match %q equally well; disambiguate by exact title", reference)
		return it, true
	}

	it.TargetID = match.ID
	it.TargetTitle = match.Title
	it.Confidence = match.Score
	return it, true
}

func matchWishPhrase(lower string) (string, bool) {
	for _, phrase := range wishPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

func classifyWish(text, phrase string) Intent {
	idx := strings.Index(strings.ToLower(text), phrase)
	complaint := strings.TrimSpace(text[idx+len(phrase):])
	if complaint == "" {
		complaint = strings.TrimSpace(text)
	}
	complaint = NormalizeText(complaint)

	return Intent{
		Kind:       KindCreateRecord,
		Confidence: 1.0,
		Capture: &Capture{
			Title:          ShortTitle(complaint),
			Description:    complaint,
			DesiredOutcome: InferOutcome(complaint),
			Frequency:      "once",
			Impact:         "low",
			Source:         "terminal",
		},
	}
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
