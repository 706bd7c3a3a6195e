package export

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scanward/scanward/internal/audit"
)

const toolInformationURI = "https://github.com/scanward/scanward"

// writeSARIF converts the report into a single-run SARIF 2.1.0 document.
func writeSARIF(w io.Writer, report *audit.Report) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating sarif document: %w", err)
	}

	run := sarif.NewRunWithInformationURI("scanward", toolInformationURI)
	seenRules := make(map[string]struct{})
	for _, f := range report.Findings {
		if _, ok := seenRules[f.RuleID]; !ok {
			seenRules[f.RuleID] = struct{}{}
			run.AddRule(f.RuleID).
				WithDescription(f.IssueType).
				WithHelpURI(cweURI(f.CWE)).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: toSarifLevel(f.Severity),
				})
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.FilePath)).
				WithRegion(sarif.NewRegion().WithStartLine(f.LineNumber)),
		)

		result := sarif.NewRuleResult(f.RuleID).
			WithMessage(sarif.NewTextMessage(f.Description)).
			WithLevel(toSarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	doc.AddRun(run)

	return doc.PrettyWrite(w)
}

func toSarifLevel(severity audit.Severity) string {
	switch severity {
	case audit.SeverityCritical, audit.SeverityHigh:
		return "error"
	case audit.SeverityMedium:
		return "warning"
	case audit.SeverityLow:
		return "note"
	default:
		return "none"
	}
}

func cweURI(cwe string) string {
	if cwe == "" {
		return toolInformationURI
	}
	return "https://cwe.mitre.org/data/definitions/" + numericCWE(cwe) + ".html"
}

func numericCWE(cwe string) string {
	for i := len(cwe) - 1; i >= 0; i-- {
		if cwe[i] < '0' || cwe[i] > '9' {
			return cwe[i+1:]
		}
	}
	return cwe
}
