package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/scanward/scanward/internal/audit"
)

func sampleReport() *audit.Report {
	started := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	return &audit.Report{
		ScanID:    "scan-42",
		RootPath:  "/repo",
		StartedAt: started,
		EndedAt:   started.Add(3 * time.Second),
		Files: []audit.FileRecord{
			{Path: "app.py", Language: "python", LineCount: 40, AIEligible: true},
		},
		Findings: []audit.Finding{
			{
				ID:             "abc123",
				FilePath:       "app.py",
				LineNumber:     14,
				CodeSnippet:    `query = f"SELECT * FROM users WHERE id = {user_id}"`,
				RuleID:         "SEC-SQLI",
				Category:       audit.CategorySecurity,
				IssueType:      "SQL Injection",
				Severity:       audit.SeverityHigh,
				CWE:            "CWE-89",
				Description:    "Potential SQL injection vulnerability detected",
				Recommendation: "Use parameterized queries or ORM methods",
				Source:         audit.SourcePattern,
			},
			{
				ID:         "def456",
				FilePath:   "app.py",
				LineNumber: 20,
				RuleID:     "QUAL-TODO",
				Category:   audit.CategoryQuality,
				IssueType:  "TODO Comments",
				Severity:   audit.SeverityLow,
				Source:     audit.SourcePattern,
			},
		},
		Metrics: audit.CodeMetrics{
			TotalFiles: 1,
			TotalLines: 40,
			BySeverity: map[audit.Severity]int{audit.SeverityHigh: 1, audit.SeverityLow: 1},
			ByCategory: map[audit.Category]int{audit.CategorySecurity: 1, audit.CategoryQuality: 1},
			ByLanguage: map[string]int{"python": 1},
			Computed:   true,
		},
		RiskScore:       100,
		RiskBand:        "CRITICAL",
		Recommendations: []string{"Use parameterized queries or ORM methods"},
		ComplianceChecks: []audit.ComplianceCheck{
			{Standard: "OWASP-Top-10", Status: audit.ComplianceStatusFail, Violations: []string{"SQL Injection"}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "CSV", "Sarif", "html"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("%q rejected: %v", name, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(), FormatJSON); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()

	checks := map[string]string{
		"scanId":                    "scan-42",
		"rootPath":                  "/repo",
		"riskBand":                  "CRITICAL",
		"findings.0.filePath":       "app.py",
		"findings.0.ruleId":         "SEC-SQLI",
		"findings.0.severity":       "HIGH",
		"findings.0.source":         "Pattern",
		"codeMetrics.totalFiles":    "1",
		"complianceChecks.0.status": "FAIL",
	}
	for path, want := range checks {
		if got := gjson.Get(out, path).String(); got != want {
			t.Errorf("%s: got %q, want %q", path, got, want)
		}
	}
	if got := gjson.Get(out, "findings.0.lineNumber").Int(); got != 14 {
		t.Errorf("lineNumber: got %d, want 14", got)
	}
	if gjson.Get(out, "riskScore").Float() != 100 {
		t.Errorf("riskScore: got %v", gjson.Get(out, "riskScore").Float())
	}
}

func TestCSVRows(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(), FormatCSV); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2 findings", len(rows))
	}
	if rows[0][0] != "scan_id" || rows[0][1] != "file_path" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "scan-42" || rows[1][3] != "SEC-SQLI" || rows[1][6] != "HIGH" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
}

func TestSARIFOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(), FormatSARIF); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()

	if got := gjson.Get(out, "version").String(); got != "2.1.0" {
		t.Errorf("version: got %q", got)
	}
	if got := gjson.Get(out, "runs.0.tool.driver.name").String(); got != "scanward" {
		t.Errorf("tool name: got %q", got)
	}
	if got := gjson.Get(out, "runs.0.results.#").Int(); got != 2 {
		t.Errorf("results: got %d, want 2", got)
	}

	first := gjson.Get(out, "runs.0.results.0")
	if first.Get("ruleId").String() != "SEC-SQLI" {
		t.Errorf("rule id: got %q", first.Get("ruleId").String())
	}
	if first.Get("level").String() != "error" {
		t.Errorf("level: got %q, want error for HIGH", first.Get("level").String())
	}
	loc := first.Get("locations.0.physicalLocation")
	if loc.Get("artifactLocation.uri").String() != "app.py" {
		t.Errorf("uri: got %q", loc.Get("artifactLocation.uri").String())
	}
	if loc.Get("region.startLine").Int() != 14 {
		t.Errorf("start line: got %d", loc.Get("region.startLine").Int())
	}

	if got := gjson.Get(out, "runs.0.results.1.level").String(); got != "note" {
		t.Errorf("LOW should map to note, got %q", got)
	}
}

func TestHTMLOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(), FormatHTML); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"scan-42",
		"CRITICAL",
		"SEC-SQLI",
		"app.py",
		"Use parameterized queries or ORM methods",
		"OWASP-Top-10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered html is missing %q", want)
		}
	}
	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Error("output is not an html document")
	}
}

func TestHTMLEscapesFindingContent(t *testing.T) {
	report := sampleReport()
	report.Findings[0].Description = `<script>alert("x")</script>`

	var buf bytes.Buffer
	if err := Write(&buf, report, FormatHTML); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if strings.Contains(buf.String(), `<script>alert`) {
		t.Error("finding content rendered unescaped")
	}
}

func TestCWEHelpURI(t *testing.T) {
	if got := cweURI("CWE-89"); got != "https://cwe.mitre.org/data/definitions/89.html" {
		t.Errorf("got %q", got)
	}
	if got := cweURI(""); got != toolInformationURI {
		t.Errorf("empty cwe should fall back to the tool uri, got %q", got)
	}
}
