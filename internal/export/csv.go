package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/scanward/scanward/internal/audit"
)

var csvHeader = []string{
	"scan_id", "file_path", "line_number", "rule_id", "category",
	"issue_type", "severity", "cwe", "description", "recommendation", "source",
}

// writeCSV emits one row per finding, preserving report order.
func writeCSV(w io.Writer, report *audit.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, f := range report.Findings {
		row := []string{
			report.ScanID,
			f.FilePath,
			strconv.Itoa(f.LineNumber),
			f.RuleID,
			string(f.Category),
			f.IssueType,
			string(f.Severity),
			f.CWE,
			f.Description,
			f.Recommendation,
			string(f.Source),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
