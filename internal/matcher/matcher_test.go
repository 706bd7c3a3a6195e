package matcher

import (
	"fmt"
	"strings"
	"testing"

	"github.com/scanward/scanward/internal/audit"
	"github.com/scanward/scanward/internal/rules"
)

func newMatcher() *Matcher {
	return New(rules.NewRegistry())
}

func pyRecord(path string) audit.FileRecord {
	return audit.FileRecord{Path: path, Language: "python"}
}

func TestFormatStringQueryYieldsSingleInjectionFinding(t *testing.T) {
	content := []byte(`query = f"SELECT * FROM users WHERE id = {user_id}"` + "\n")

	findings := newMatcher().Match(pyRecord("app.py"), content)

	if len(findings) != 1 {
		t.Fatalf("expected exactly one finding, got %d: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.RuleID != "SEC-SQLI" {
		t.Errorf("rule id: got %s, want SEC-SQLI", f.RuleID)
	}
	if f.Severity != audit.SeverityHigh {
		t.Errorf("severity: got %s, want HIGH", f.Severity)
	}
	if f.Category != audit.CategorySecurity {
		t.Errorf("category: got %s, want Security", f.Category)
	}
	if f.LineNumber != 1 {
		t.Errorf("line: got %d, want 1", f.LineNumber)
	}
	if f.Source != audit.SourcePattern {
		t.Errorf("source: got %s, want Pattern", f.Source)
	}
}

func TestHardcodedPasswordDetected(t *testing.T) {
	content := []byte(`password = "hunter2secret"` + "\n")

	findings := newMatcher().Match(pyRecord("settings.py"), content)

	var hit *audit.Finding
	for i := range findings {
		if findings[i].RuleID == "SEC-SECRETS" {
			hit = &findings[i]
		}
	}
	if hit == nil {
		t.Fatalf("expected a SEC-SECRETS finding, got %+v", findings)
	}
	if hit.Severity != audit.SeverityCritical {
		t.Errorf("severity: got %s, want CRITICAL", hit.Severity)
	}
}

func TestSameLineSameRuleCollapses(t *testing.T) {
	// Two SEC-CMDI alternatives match this line; it must fire once.
	content := []byte(`os.system("rm " + path)` + "\n" + `eval("x" + y)` + "\n")

	findings := newMatcher().Match(pyRecord("tool.py"), content)

	perLine := make(map[int]int)
	for _, f := range findings {
		if f.RuleID == "SEC-CMDI" {
			perLine[f.LineNumber]++
		}
	}
	for line, n := range perLine {
		if n != 1 {
			t.Errorf("line %d: SEC-CMDI fired %d times, want 1", line, n)
		}
	}
	if len(perLine) != 2 {
		t.Errorf("expected SEC-CMDI findings on 2 lines, got %d", len(perLine))
	}
}

func TestLongFunctionMetric(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("def heavy_lifting():\n")
	for i := 0; i < 120; i++ {
		sb.WriteString(fmt.Sprintf("    value_%d = %d\n", i, i))
	}

	findings := newMatcher().Match(pyRecord("big.py"), []byte(sb.String()))

	var hit *audit.Finding
	for i := range findings {
		if findings[i].RuleID == "QUAL-LONGFUNC" {
			hit = &findings[i]
		}
	}
	if hit == nil {
		t.Fatalf("expected a QUAL-LONGFUNC finding, got %+v", findings)
	}
	if hit.LineNumber != 1 {
		t.Errorf("finding should point at the function header, got line %d", hit.LineNumber)
	}
	if hit.IssueType != "Long Functions" {
		t.Errorf("issue type: got %q", hit.IssueType)
	}
}

func TestShortFunctionBelowThreshold(t *testing.T) {
	content := []byte("def small():\n    return 1\n")

	for _, f := range newMatcher().Match(pyRecord("small.py"), content) {
		if f.RuleID == "QUAL-LONGFUNC" {
			t.Errorf("short function flagged as long: %+v", f)
		}
	}
}

func TestParameterCountMetric(t *testing.T) {
	content := []byte("def wide(a, b, c, d, e, f, g):\n    return a\n")

	findings := newMatcher().Match(pyRecord("wide.py"), content)

	found := false
	for _, f := range findings {
		if f.RuleID == "QUAL-PARAMS" {
			found = true
		}
	}
	if !found {
		t.Errorf("seven parameters should exceed the threshold of six, got %+v", findings)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	content := []byte(`password = "hunter2secret"` + "\n" + `query = "SELECT * FROM t WHERE id=" + uid` + "\n")
	record := pyRecord("app.py")
	m := newMatcher()

	first := m.Match(record, content)
	second := m.Match(record, content)

	if len(first) != len(second) {
		t.Fatalf("runs differ in size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("position %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestEmptyContentYieldsNoFindings(t *testing.T) {
	if findings := newMatcher().Match(pyRecord("empty.py"), nil); len(findings) != 0 {
		t.Errorf("empty content produced findings: %+v", findings)
	}
}
