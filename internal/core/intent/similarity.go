package intent

// Similarity scores the token-set overlap of two titles in [0,1]
// (Jaccard over stopword-filtered tokens). Word order does not matter:
// "Organic Bananas" and "Bananas Organic" score 1.0.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range Tokenize(text) {
		set[token] = true
	}
	return set
}

// Match is one fuzzy title resolution result.
type Match struct {
	ID    string
	Title string
	Score float64
	// Tied is set when multiple candidates share the top score at or
	// above the threshold; the caller must ask for disambiguation
	// instead of guessing.
	Tied bool
}

// ResolveTitle finds the backlog entry best matching the reference.
// Only scores at or above the threshold are accepted; on multiple
// candidates the highest score wins and exact ties are reported, not
// broken.
func ResolveTitle(reference string, backlog []BacklogEntry, threshold float64) (Match, bool) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	best := Match{Score: -1}
	for _, entry := range backlog {
		score := Similarity(reference, entry.Title)
		if score < threshold {
			continue
		}
		switch {
		case score > best.Score:
			best = Match{ID: entry.ID, Title: entry.Title, Score: score}
		case score == best.Score:
			best.Tied = true
		}
	}

	if best.Score < 0 {
		return Match{}, false
	}
	return best, true
}
