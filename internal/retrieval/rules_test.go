package retrieval

import (
	"os"
	"path/filepath"
	"testing"
)

func ruleByName(t *testing.T, rules []Rule, name string) Rule {
	t.Helper()
	for _, r := range rules {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("rule %q not found", name)
	return Rule{}
}

func TestDefaultRuleConstants(t *testing.T) {
	rules := DefaultRules()
	if len(rules) != 6 {
		t.Fatalf("len(rules) = %d, want 6", len(rules))
	}

	tests := []struct {
		name       string
		multiplier float64
	}{
		{"protocol-terms", 1.6},
		{"mechanism-terms", 1.4},
		{"precision-terms", 1.3},
		{"preferred-source", 1.5},
		{"knight-affinity", 1.8},
		{"safety-liveness", 1.7},
	}
	for _, tt := range tests {
		if got := ruleByName(t, rules, tt.name).Multiplier; got != tt.multiplier {
			t.Errorf("%s multiplier = %v, want %v", tt.name, got, tt.multiplier)
		}
	}

	if src := ruleByName(t, rules, "preferred-source").Source; src != "whitepaper" {
		t.Errorf("preferred-source source = %q, want whitepaper", src)
	}
	if !ruleByName(t, rules, "knight-affinity").QueryMatch {
		t.Error("knight-affinity should require a query match")
	}
	if !ruleByName(t, rules, "safety-liveness").QueryMatch {
		t.Error("safety-liveness should require a query match")
	}
}

func TestRuleBoostContentMatch(t *testing.T) {
	rule := Rule{Terms: []string{"ghostdag", "phantom"}, Multiplier: 1.6}

	if got := rule.boost("anything", "the ghostdag protocol orders blocks", ""); got != 1.6 {
		t.Errorf("boost = %v, want 1.6", got)
	}
	if got := rule.boost("anything", "unrelated text", ""); got != 1 {
		t.Errorf("boost = %v, want 1", got)
	}
}

func TestRuleBoostQueryMatch(t *testing.T) {
	rule := Rule{Terms: []string{"safety", "liveness"}, QueryMatch: true, Multiplier: 1.7}

	// Needs a term in both query and content.
	if got := rule.boost("is this a safety violation", "liveness is delayed finality", ""); got != 1.7 {
		t.Errorf("boost = %v, want 1.7", got)
	}
	if got := rule.boost("how does mining work", "liveness is delayed finality", ""); got != 1 {
		t.Errorf("boost = %v, want 1 when query has no term", got)
	}
	if got := rule.boost("is this a safety violation", "mining rewards", ""); got != 1 {
		t.Errorf("boost = %v, want 1 when content has no term", got)
	}
}

func TestRuleBoostSourceMatch(t *testing.T) {
	rule := Rule{Source: "whitepaper", Multiplier: 1.5}

	if got := rule.boost("q", "c", "whitepaper"); got != 1.5 {
		t.Errorf("boost = %v, want 1.5", got)
	}
	if got := rule.boost("q", "c", "generic"); got != 1 {
		t.Errorf("boost = %v, want 1", got)
	}
}

func TestLoadRulesFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rules.yaml")
	content := `- name: custom-terms
  terms: [dagknight, parallel blocks]
  multiplier: 2.0
- name: custom-source
  source: kasparchive
  multiplier: 1.2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}
	if rules[0].Multiplier != 2.0 || rules[0].Terms[0] != "dagknight" {
		t.Errorf("unexpected first rule: %+v", rules[0])
	}
	if rules[1].Source != "kasparchive" {
		t.Errorf("unexpected second rule: %+v", rules[1])
	}
}

func TestLoadRulesEmptyPathReturnsDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules) != len(DefaultRules()) {
		t.Errorf("len(rules) = %d, want %d", len(rules), len(DefaultRules()))
	}
}

func TestLoadRulesValidation(t *testing.T) {
	tmpDir := t.TempDir()

	badMultiplier := filepath.Join(tmpDir, "bad1.yaml")
	_ = os.WriteFile(badMultiplier, []byte("- name: x\n  terms: [a]\n  multiplier: 0\n"), 0644)
	if _, err := LoadRules(badMultiplier); err == nil {
		t.Error("expected error for zero multiplier")
	}

	noMatcher := filepath.Join(tmpDir, "bad2.yaml")
	_ = os.WriteFile(noMatcher, []byte("- name: x\n  multiplier: 1.5\n"), 0644)
	if _, err := LoadRules(noMatcher); err == nil {
		t.Error("expected error for rule with neither terms nor source")
	}
}
