// Package matcher applies the rule catalogue to file content, producing
// findings with file, line and snippet context. Matching is deterministic and
// side-effect free: the same content always yields the same findings.
package matcher

import (
	"strings"

	"github.com/scanward/scanward/internal/audit"
	"github.com/scanward/scanward/internal/rules"
)

const maxSnippetLen = 200

// Matcher evaluates registry rules against file content.
type Matcher struct {
	registry *rules.Registry
}

func New(registry *rules.Registry) *Matcher {
	return &Matcher{registry: registry}
}

// Match runs every rule against the content and returns the findings.
// Within one file, identical (ruleId, lineNumber) matches collapse to a
// single finding, so a rule with several pattern alternatives fires at most
// once per line.
func (m *Matcher) Match(record audit.FileRecord, content []byte) []audit.Finding {
	lines := strings.Split(string(content), "\n")

	var findings []audit.Finding
	seen := make(map[string]struct{})

	emit := func(rule rules.Rule, line int, snippet string) {
		id := audit.FindingID(record.Path, rule.ID, line)
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		findings = append(findings, audit.Finding{
			ID:             id,
			FilePath:       record.Path,
			LineNumber:     line,
			CodeSnippet:    trimSnippet(snippet),
			RuleID:         rule.ID,
			Category:       rule.Category,
			IssueType:      rule.IssueType,
			Severity:       rule.Severity,
			CWE:            rule.CWE,
			Description:    rule.Description,
			Recommendation: rule.Recommendation,
			Source:         audit.SourcePattern,
		})
	}

	for _, rule := range m.registry.All() {
		if rule.IsMetric() {
			m.matchMetric(rule, record, lines, emit)
			continue
		}
		for i, line := range lines {
			for _, pattern := range rule.Patterns {
				if pattern.MatchString(line) {
					emit(rule, i+1, line)
					break
				}
			}
		}
	}

	return findings
}

// matchMetric computes structural units once per file and emits a finding for
// every unit exceeding the rule threshold.
func (m *Matcher) matchMetric(rule rules.Rule, record audit.FileRecord, lines []string, emit func(rules.Rule, int, string)) {
	units := extractUnits(record.Language, lines)
	switch rule.Metric {
	case rules.MetricFunctionLength:
		for _, u := range units {
			if u.length > rule.Threshold {
				emit(rule, u.startLine, lines[u.startLine-1])
			}
		}
	case rules.MetricParameterCount:
		for _, u := range units {
			if u.params > rule.Threshold {
				emit(rule, u.startLine, lines[u.startLine-1])
			}
		}
	case rules.MetricNestingDepth:
		for _, line := range nestingViolations(record.Language, lines, rule.Threshold) {
			emit(rule, line, lines[line-1])
		}
	}
}

func trimSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen]
	}
	return s
}
