package audit

import (
	"sort"
	"time"
)

// FileRecord describes one candidate file seen by the walker.
type FileRecord struct {
	Path       string        `json:"path"`
	Language   string        `json:"language"`
	LineCount  int           `json:"lineCount"`
	ByteSize   int64         `json:"byteSize"`
	Duration   time.Duration `json:"scanDuration"`
	AIEligible bool          `json:"aiEligible"`
	Truncated  bool          `json:"truncated,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// CodeMetrics aggregates finding totals over a report. Computed distinguishes
// "no issues" from "not evaluated": a canceled scan may leave it false.
type CodeMetrics struct {
	TotalFiles    int              `json:"totalFiles"`
	TotalLines    int              `json:"totalLines"`
	BySeverity    map[Severity]int `json:"bySeverity"`
	ByCategory    map[Category]int `json:"byCategory"`
	ByLanguage    map[string]int   `json:"byLanguage"`
	Computed      bool             `json:"computed"`
}

// Compliance statuses for named standards.
const (
	ComplianceStatusPass         = "PASS"
	ComplianceStatusFail         = "FAIL"
	ComplianceStatusPartial      = "PARTIAL"
	ComplianceStatusNotEvaluated = "NOT_EVALUATED"
)

// ComplianceCheck is a derived verdict per named standard, based on which
// finding categories are present in a report.
type ComplianceCheck struct {
	Standard   string   `json:"standard"`
	Status     string   `json:"status"`
	Violations []string `json:"violations,omitempty"`
}

// Report is the complete output of one scan. It is mutated only by the
// orchestrator during the scan that owns it and becomes immutable once
// persisted.
type Report struct {
	ScanID           string            `json:"scanId"`
	RootPath         string            `json:"rootPath"`
	StartedAt        time.Time         `json:"startedAt"`
	EndedAt          time.Time         `json:"endedAt"`
	Files            []FileRecord      `json:"files"`
	Findings         []Finding         `json:"findings"`
	Metrics          CodeMetrics       `json:"codeMetrics"`
	RiskScore        float64           `json:"riskScore"`
	RiskBand         string            `json:"riskBand"`
	Recommendations  []string          `json:"recommendations"`
	ComplianceChecks []ComplianceCheck `json:"complianceChecks"`
	Incomplete       bool              `json:"incomplete"`
}

// ReportSummary is the compact shape returned by history queries.
type ReportSummary struct {
	ScanID        string    `json:"scanId"`
	Timestamp     time.Time `json:"timestamp"`
	RiskScore     float64   `json:"riskScore"`
	TotalFindings int       `json:"totalFindings"`
}

// SortFindings normalizes finding order to (file path, line number, rule id)
// so that report output is independent of worker scheduling order.
func SortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].FilePath != findings[j].FilePath {
			return findings[i].FilePath < findings[j].FilePath
		}
		if findings[i].LineNumber != findings[j].LineNumber {
			return findings[i].LineNumber < findings[j].LineNumber
		}
		return findings[i].RuleID < findings[j].RuleID
	})
}

// SortFiles normalizes file record order by path.
func SortFiles(files []FileRecord) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
}
