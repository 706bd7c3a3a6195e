package engine

import (
	"sort"

	"github.com/scanward/scanward/internal/audit"
)

// complianceStandards is the fixed mapping from standard name to the finding
// conditions that break it. Evaluation is derived entirely from the findings
// present in a report.
var complianceStandards = []string{"OWASP-Top-10", "PCI-DSS", "CWE-Top-25"}

// evaluateCompliance derives a verdict per standard. When the scan never
// reached aggregation (canceled before any file completed) the checks carry
// the NOT_EVALUATED sentinel so callers can tell "clean" from "unknown".
func evaluateCompliance(findings []audit.Finding, evaluated bool) []audit.ComplianceCheck {
	checks := make([]audit.ComplianceCheck, 0, len(complianceStandards))
	if !evaluated {
		for _, standard := range complianceStandards {
			checks = append(checks, audit.ComplianceCheck{
				Standard: standard,
				Status:   audit.ComplianceStatusNotEvaluated,
			})
		}
		return checks
	}

	var security, highSecurity []audit.Finding
	var cweTagged []audit.Finding
	injectionOrSecrets := map[string]bool{}
	for _, f := range findings {
		if f.CWE != "" {
			cweTagged = append(cweTagged, f)
		}
		if f.Category != audit.CategorySecurity {
			continue
		}
		security = append(security, f)
		if f.Severity == audit.SeverityCritical || f.Severity == audit.SeverityHigh {
			highSecurity = append(highSecurity, f)
		}
		if f.IssueType == "SQL Injection" || f.IssueType == "Hardcoded Secrets" {
			injectionOrSecrets[f.IssueType] = true
		}
	}

	// OWASP-Top-10: fails on any CRITICAL/HIGH security finding, partial on
	// lower-severity security findings.
	owasp := audit.ComplianceCheck{Standard: "OWASP-Top-10", Status: audit.ComplianceStatusPass}
	if len(highSecurity) > 0 {
		owasp.Status = audit.ComplianceStatusFail
		owasp.Violations = issueTypes(highSecurity)
	} else if len(security) > 0 {
		owasp.Status = audit.ComplianceStatusPartial
		owasp.Violations = issueTypes(security)
	}
	checks = append(checks, owasp)

	// PCI-DSS: credential exposure and injection are outright failures.
	pci := audit.ComplianceCheck{Standard: "PCI-DSS", Status: audit.ComplianceStatusPass}
	if len(injectionOrSecrets) > 0 {
		pci.Status = audit.ComplianceStatusFail
		for issueType := range injectionOrSecrets {
			pci.Violations = append(pci.Violations, issueType)
		}
		sort.Strings(pci.Violations)
	} else if len(security) > 0 {
		pci.Status = audit.ComplianceStatusPartial
		pci.Violations = issueTypes(security)
	}
	checks = append(checks, pci)

	// CWE-Top-25: any CWE-tagged CRITICAL finding fails; other tagged
	// findings leave the verdict partial.
	cwe := audit.ComplianceCheck{Standard: "CWE-Top-25", Status: audit.ComplianceStatusPass}
	for _, f := range cweTagged {
		if f.Severity == audit.SeverityCritical {
			cwe.Status = audit.ComplianceStatusFail
			break
		}
		cwe.Status = audit.ComplianceStatusPartial
	}
	if cwe.Status != audit.ComplianceStatusPass {
		cwe.Violations = issueTypes(cweTagged)
	}
	checks = append(checks, cwe)

	return checks
}

// issueTypes returns the distinct issue types of findings, sorted.
func issueTypes(findings []audit.Finding) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, f := range findings {
		if _, dup := seen[f.IssueType]; dup {
			continue
		}
		seen[f.IssueType] = struct{}{}
		out = append(out, f.IssueType)
	}
	sort.Strings(out)
	return out
}
