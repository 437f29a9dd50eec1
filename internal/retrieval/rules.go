package retrieval

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one multiplicative ranking boost. A rule either matches a chunk's
// source category exactly (Source set) or performs case-insensitive
// substring membership checks against Terms. With QueryMatch set, a term
// must appear in the query and a term must appear in the content for the
// rule to fire. Each rule applies at most once per candidate; matching
// rules multiply into the same base score.
type Rule struct {
	Name       string   `yaml:"name"`
	Terms      []string `yaml:"terms,omitempty"`
	Source     string   `yaml:"source,omitempty"`
	QueryMatch bool     `yaml:"query_match,omitempty"`
	Multiplier float64  `yaml:"multiplier"`
}

// DefaultRules returns the built-in ranking rules. The term lists and
// multipliers are contractual: downstream evaluation depends on the
// ordering they produce, so they must not be tuned casually.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "protocol-terms",
			Terms:      []string{"knight", "k-colouring", "umc-voting", "ghostdag", "phantom", "algorithm", "procedure"},
			Multiplier: 1.6,
		},
		{
			Name:       "mechanism-terms",
			Terms:      []string{"tie-breaking", "consensus", "safety", "liveness", "cluster", "excessive rank", "natural rank"},
			Multiplier: 1.4,
		},
		{
			Name:       "precision-terms",
			Terms:      []string{"returns", "ensures", "prevents", "selects", "validates", "determines"},
			Multiplier: 1.3,
		},
		{
			Name:       "preferred-source",
			Source:     "whitepaper",
			Multiplier: 1.5,
		},
		{
			Name:       "knight-affinity",
			Terms:      []string{"knight"},
			QueryMatch: true,
			Multiplier: 1.8,
		},
		{
			Name:       "safety-liveness",
			Terms:      []string{"safety", "liveness"},
			QueryMatch: true,
			Multiplier: 1.7,
		},
	}
}

// LoadRules reads a rule table from a YAML file. An empty path returns the
// default rules.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking rules: %w", err)
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse ranking rules: %w", err)
	}

	for i, rule := range rules {
		if rule.Multiplier <= 0 {
			return nil, fmt.Errorf("rule %d (%s): multiplier must be greater than 0", i, rule.Name)
		}
		if len(rule.Terms) == 0 && rule.Source == "" {
			return nil, fmt.Errorf("rule %d (%s): needs terms or a source", i, rule.Name)
		}
	}
	return rules, nil
}

// boost returns the rule's multiplier when it matches, 1 otherwise.
// queryLower and contentLower must already be lowercased.
func (r Rule) boost(queryLower, contentLower, source string) float64 {
	if r.Source != "" {
		if source == r.Source {
			return r.Multiplier
		}
		return 1
	}

	if r.QueryMatch && !anyTerm(queryLower, r.Terms) {
		return 1
	}
	if anyTerm(contentLower, r.Terms) {
		return r.Multiplier
	}
	return 1
}

func anyTerm(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
