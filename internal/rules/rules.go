// Package rules holds the immutable detection catalogue: regex rules for
// security vulnerabilities and regex or metric-threshold rules for
// maintainability defects. The catalogue is built once at process start and
// never mutated afterwards, so rule ordering and therefore scoring are
// reproducible across runs.
package rules

import (
	"regexp"

	"github.com/scanward/scanward/internal/audit"
)

// Metric identifies a computed structural metric for threshold rules.
type Metric string

const (
	MetricNone           Metric = ""
	MetricFunctionLength Metric = "function_length"
	MetricNestingDepth   Metric = "nesting_depth"
	MetricParameterCount Metric = "parameter_count"
)

// Rule is a named detection definition with a fixed severity and remediation
// text. Exactly one matcher kind is set: Patterns for text rules, Metric plus
// Threshold for structural rules.
type Rule struct {
	ID             string
	IssueType      string
	Category       audit.Category
	Severity       audit.Severity
	CWE            string
	Description    string
	Recommendation string

	Patterns  []*regexp.Regexp
	Metric    Metric
	Threshold int
}

// IsMetric reports whether the rule matches on a computed metric instead of
// text patterns.
func (r Rule) IsMetric() bool {
	return r.Metric != MetricNone
}

// Registry is the read-only rule catalogue.
type Registry struct {
	rules []Rule
}

// NewRegistry builds the default catalogue in registration order.
func NewRegistry() *Registry {
	rules := make([]Rule, 0, len(securityRules)+len(qualityRules))
	rules = append(rules, securityRules...)
	rules = append(rules, qualityRules...)
	return &Registry{rules: rules}
}

// Rules returns the rules of the given category in registration order. The
// returned slice is a copy; callers cannot mutate the catalogue.
func (r *Registry) Rules(category audit.Category) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if rule.Category == category {
			out = append(out, rule)
		}
	}
	return out
}

// All returns every rule in registration order.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Lookup returns the rule with the given id.
func (r *Registry) Lookup(id string) (Rule, bool) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}
