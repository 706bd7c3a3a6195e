package audit

import (
	"testing"
)

func TestFindingIDStable(t *testing.T) {
	a := FindingID("src/app.py", "SEC-SQLI", 14)
	b := FindingID("src/app.py", "SEC-SQLI", 14)
	if a != b {
		t.Errorf("expected identical ids for identical inputs, got %q and %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("expected a 16 character id, got %d characters", len(a))
	}
}

func TestFindingIDDiscriminates(t *testing.T) {
	base := FindingID("src/app.py", "SEC-SQLI", 14)
	cases := map[string]string{
		"different path": FindingID("src/other.py", "SEC-SQLI", 14),
		"different rule": FindingID("src/app.py", "SEC-XSS", 14),
		"different line": FindingID("src/app.py", "SEC-SQLI", 15),
	}
	for name, id := range cases {
		if id == base {
			t.Errorf("%s produced the same id %q", name, id)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !SeverityCritical.MoreSevere(SeverityHigh) {
		t.Error("CRITICAL should rank above HIGH")
	}
	if !SeverityHigh.MoreSevere(SeverityLow) {
		t.Error("HIGH should rank above LOW")
	}
	if SeverityLow.MoreSevere(SeverityLow) {
		t.Error("a severity should not rank above itself")
	}
	if Severity("BOGUS").Valid() {
		t.Error("unknown severity should not be valid")
	}
}

func TestSortFindings(t *testing.T) {
	findings := []Finding{
		{FilePath: "b.py", LineNumber: 3, RuleID: "SEC-XSS"},
		{FilePath: "a.py", LineNumber: 9, RuleID: "SEC-SQLI"},
		{FilePath: "a.py", LineNumber: 2, RuleID: "SEC-XSS"},
		{FilePath: "a.py", LineNumber: 2, RuleID: "SEC-SQLI"},
	}
	SortFindings(findings)

	want := []struct {
		path string
		line int
		rule string
	}{
		{"a.py", 2, "SEC-SQLI"},
		{"a.py", 2, "SEC-XSS"},
		{"a.py", 9, "SEC-SQLI"},
		{"b.py", 3, "SEC-XSS"},
	}
	for i, w := range want {
		f := findings[i]
		if f.FilePath != w.path || f.LineNumber != w.line || f.RuleID != w.rule {
			t.Errorf("position %d: got (%s, %d, %s), want (%s, %d, %s)",
				i, f.FilePath, f.LineNumber, f.RuleID, w.path, w.line, w.rule)
		}
	}
}
