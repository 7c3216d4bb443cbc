package intent

import (
	"regexp"
	"strings"
)

// TitleLimit clamps captured titles.
const TitleLimit = 80

var stopwords = map[string]bool{
	"the": true, "and": true, "or": true, "to": true, "a": true,
	"an": true, "of": true, "in": true, "for": true, "with": true,
	"is": true, "are": true, "be": true, "it": true, "this": true,
	"that": true, "my": true, "your": true, "from": true, "on": true,
	"by": true, "as": true, "at": true, "like": true, "me": true,
	"lets": true, "let": true, "take": true, "make": true,
	"build": true, "implement": true, "create": true,
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lowercases text and returns its non-stopword tokens.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if !stopwords[token] {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// NormalizeText collapses whitespace and straightens double quotes so
// captured text survives being embedded in remote payloads.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(text, `"`, "'")), " ")
}

// ShortTitle clamps text to TitleLimit runes, appending an ellipsis.
func ShortTitle(text string) string {
	clean := strings.Join(strings.Fields(text), " ")
	runes := []rune(clean)
	if len(runes) <= TitleLimit {
		return clean
	}
	return strings.TrimRight(string(runes[:TitleLimit-3]), " ") + "..."
}

// InferOutcome derives a desired outcome from a bare complaint.
func InferOutcome(complaint string) string {
	return "Resolve: " + ShortTitle(complaint)
}

var quotedPattern = regexp.MustCompile(`['"]([^'"]+)['"]`)

// quotedPhrases returns the contents of single- or double-quoted spans.
func quotedPhrases(text string) []string {
	matches := quotedPattern.FindAllStringSubmatch(text, -1)
	phrases := make([]string, 0, len(matches))
	for _, m := range matches {
		phrases = append(phrases, m[1])
	}
	return phrases
}

// stripQuotes trims surrounding quotes and whitespace.
func stripQuotes(text string) string {
	return strings.Trim(strings.TrimSpace(text), `"'`)
}

// extractQuery pulls the free-text query following the first matched
// route keyword, dropping leading filler.
func extractQuery(text string, words []string) string {
	if quoted := quotedPhrases(text); len(quoted) > 0 {
		return quoted[0]
	}
	lower := strings.ToLower(text)
	for _, word := range words {
		idx := strings.Index(lower, word)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(text[idx+len(word):])
		for _, filler := range []string{"for ", "me "} {
			rest = strings.TrimPrefix(rest, filler)
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(text)
}

// containsAny reports whether lower contains any of the words.
func containsAny(lower string, words []string) bool {
	for _, word := range words {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
