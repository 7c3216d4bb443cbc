package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Rules holds optional operator overrides for classifier and triage
// behavior, loaded from ~/.aide/rules.yaml. The zero value means
// "use built-in defaults" for every field.
type Rules struct {
	// FuzzyThreshold overrides the title-match acceptance threshold.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	// Routes adds keywords to a classifier route (search, list, triage,
	// deploy, edit, prefs).
	Routes map[string][]string `yaml:"routes"`

	// ThemeByDomain maps a domain tag to a triage theme.
	ThemeByDomain map[string]string `yaml:"theme_by_domain"`

	// ThemeKeywords maps free-text keywords to a triage theme. Order
	// matters: earlier entries win.
	ThemeKeywords []KeywordTheme `yaml:"theme_keywords"`
}

// KeywordTheme is one keyword-to-theme rule.
type KeywordTheme struct {
	Keyword string `yaml:"keyword"`
	Theme   string `yaml:"theme"`
}

// LoadRules reads rules.yaml from the aide home directory. A missing
// file yields an empty Rules value.
func LoadRules() (*Rules, error) {
	dir, err := Home()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, "rules.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Rules{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	rules := &Rules{}
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	return rules, nil
}
