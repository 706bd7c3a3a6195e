package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Severity is a normalized finding severity, ordered for scoring.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// rank orders severities for sorting, highest first.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// MoreSevere reports whether s ranks above other.
func (s Severity) MoreSevere(other Severity) bool {
	return s.rank() < other.rank()
}

// Valid reports whether s is one of the four defined levels.
func (s Severity) Valid() bool {
	return s.rank() < 4
}

// Category separates security findings from maintainability findings.
type Category string

const (
	CategorySecurity Category = "Security"
	CategoryQuality  Category = "Quality"
)

// Source records finding provenance. It is never mutated after creation.
type Source string

const (
	SourcePattern Source = "Pattern"
	SourceAI      Source = "AI"
)

// Finding is a single detected issue instance. Findings are immutable once
// created; a rescan produces a fresh set.
type Finding struct {
	ID             string   `json:"id"`
	FilePath       string   `json:"filePath"`
	LineNumber     int      `json:"lineNumber"`
	CodeSnippet    string   `json:"codeSnippet"`
	RuleID         string   `json:"ruleId"`
	Category       Category `json:"category"`
	IssueType      string   `json:"issueType"`
	Severity       Severity `json:"severity"`
	CWE            string   `json:"cwe,omitempty"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Source         Source   `json:"source"`
}

// FindingID derives the stable finding identifier from (file path, rule id,
// line number). It is used to dedup findings across pattern and AI sources.
func FindingID(filePath, ruleID string, line int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", filePath, ruleID, line)))
	return hex.EncodeToString(sum[:])[:16]
}
