// Package intent maps free-form operator instructions onto the closed
// action space. Classification is deterministic keyword routing plus
// fuzzy title matching; when nothing matches confidently it returns
// Unknown rather than guessing. No I/O, only pure functions.
package intent

// Kind tags the closed action space.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindSearch       Kind = "search"
	KindShowBacklog  Kind = "backlog"
	KindCreateRecord Kind = "create"
	KindUpdateRecord Kind = "update"
	KindTriage       Kind = "triage"
	KindDeploy       Kind = "deploy"
	KindApplyLast    Kind = "apply_last"
	KindSetPrefs     Kind = "prefs"
)

// Field keys carried by update intents.
const (
	FieldTitle       = "title"
	FieldStatus      = "status"
	FieldDescription = "description"
	FieldDomains     = "domains"
)

// Capture holds the parsed fields of a create intent.
type Capture struct {
	Title          string
	Description    string
	DesiredOutcome string
	Frequency      string
	Impact         string
	Domains        []string
	Source         string
}

// Intent is the classified instruction, consumed immediately by the
// router and never persisted.
type Intent struct {
	Kind        Kind
	Query       string
	TargetID    string
	TargetTitle string
	// Confidence is the title-match similarity in [0,1]; 1.0 when the
	// target was named explicitly.
	Confidence float64
	Fields     map[string]string
	Capture    *Capture
	Prefs      map[string]string
	// Note explains Unknown results and disambiguation requests.
	Note string
}

// Mutating reports whether the intent writes to an external system.
func (i Intent) Mutating() bool {
	switch i.Kind {
	case KindCreateRecord, KindUpdateRecord, KindDeploy, KindApplyLast:
		return true
	}
	return false
}

// BacklogEntry is the classifier's view of one known record, used to
// resolve ambiguous title references.
type BacklogEntry struct {
	ID     string
	Title  string
	Status string
}

// Context carries what the classifier may consult: whether a persisted
// preview exists (to resolve "apply that") and a recent backlog
// snapshot (to resolve title references).
type Context struct {
	HasLastPreview bool
	Backlog        []BacklogEntry
	Rules          Rules
}

// Rules are the keyword tables and the fuzzy-match threshold. Operator
// overrides from rules.yaml extend the word lists.
type Rules struct {
	Threshold   float64
	SearchWords []string
	ListWords   []string
	TriageWords []string
	DeployWords []string
	EditWords   []string
	PrefsWords  []string
}

// DefaultThreshold is the similarity floor for accepting a fuzzy title
// match. Scores exactly at the threshold are accepted.
const DefaultThreshold = 0.7

// DefaultRules returns the built-in routing tables.
func DefaultRules() Rules {
	return Rules{
		Threshold:   DefaultThreshold,
		SearchWords: []string{"search", "find", "lookup"},
		ListWords:   []string{"list requests", "show backlog", "list backlog", "show requests", "list wishes", "show wishes", "backlog"},
		TriageWords: []string{"triage", "what should we build", "pick something to build", "next tool to build"},
		DeployWords: []string{"deploy", "ship it", "push to vm"},
		EditWords:   []string{"edit", "update", "change", "fix", "correct", "rename", "set"},
		PrefsWords:  []string{"auto apply", "auto-apply"},
	}
}

// Extend appends operator keywords to the named route table.
func (r Rules) Extend(route string, words []string) Rules {
	switch route {
	case "search":
		r.SearchWords = append(r.SearchWords, words...)
	case "list":
		r.ListWords = append(r.ListWords, words...)
	case "triage":
		r.TriageWords = append(r.TriageWords, words...)
	case "deploy":
		r.DeployWords = append(r.DeployWords, words...)
	case "edit":
		r.EditWords = append(r.EditWords, words...)
	case "prefs":
		r.PrefsWords = append(r.PrefsWords, words...)
	}
	return r
}
