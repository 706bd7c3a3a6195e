package rules

import (
	"testing"

	"github.com/scanward/scanward/internal/audit"
)

func TestRegistryOrderIsDeterministic(t *testing.T) {
	first := NewRegistry().All()
	second := NewRegistry().All()

	if len(first) != len(second) {
		t.Fatalf("registries differ in size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("position %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestRegistryCategories(t *testing.T) {
	r := NewRegistry()

	security := r.Rules(audit.CategorySecurity)
	quality := r.Rules(audit.CategoryQuality)

	if len(security) == 0 || len(quality) == 0 {
		t.Fatalf("expected both categories populated, got %d security and %d quality", len(security), len(quality))
	}
	if len(security)+len(quality) != len(r.All()) {
		t.Errorf("categories do not partition the catalogue")
	}
	for _, rule := range security {
		if rule.Category != audit.CategorySecurity {
			t.Errorf("rule %s leaked into the security listing", rule.ID)
		}
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	r := NewRegistry()
	listing := r.Rules(audit.CategorySecurity)
	original := listing[0].ID
	listing[0].ID = "MUTATED"

	again := r.Rules(audit.CategorySecurity)
	if again[0].ID != original {
		t.Errorf("mutating a listing changed the catalogue: %q", again[0].ID)
	}
}

func TestLookup(t *testing.T) {
	r := NewRegistry()

	rule, ok := r.Lookup("SEC-SQLI")
	if !ok {
		t.Fatal("SEC-SQLI not found")
	}
	if rule.Severity != audit.SeverityHigh || rule.CWE != "CWE-89" {
		t.Errorf("SEC-SQLI carries unexpected metadata: %s %s", rule.Severity, rule.CWE)
	}

	if _, ok := r.Lookup("NO-SUCH-RULE"); ok {
		t.Error("lookup of an unknown id succeeded")
	}
}

func TestMetricRulesHaveThresholds(t *testing.T) {
	for _, rule := range NewRegistry().All() {
		if rule.IsMetric() {
			if rule.Threshold <= 0 {
				t.Errorf("metric rule %s has no threshold", rule.ID)
			}
			if len(rule.Patterns) != 0 {
				t.Errorf("metric rule %s also carries patterns", rule.ID)
			}
		} else if len(rule.Patterns) == 0 {
			t.Errorf("pattern rule %s has no patterns", rule.ID)
		}
	}
}

func TestHardcodedSecretsIsCritical(t *testing.T) {
	rule, ok := NewRegistry().Lookup("SEC-SECRETS")
	if !ok {
		t.Fatal("SEC-SECRETS not found")
	}
	if rule.Severity != audit.SeverityCritical {
		t.Errorf("hardcoded secrets should be CRITICAL, got %s", rule.Severity)
	}
}
