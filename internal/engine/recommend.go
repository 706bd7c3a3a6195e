package engine

import (
	"sort"

	"github.com/scanward/scanward/internal/audit"
)

// rankRecommendations derives the ordered remediation list from the findings:
// one entry per distinct recommendation text, ranked by the most severe
// finding carrying it, then by how often it occurs, then alphabetically for a
// stable order.
func rankRecommendations(findings []audit.Finding) []string {
	type group struct {
		text     string
		severity audit.Severity
		count    int
	}

	groups := make(map[string]*group)
	for _, f := range findings {
		if f.Recommendation == "" {
			continue
		}
		g, ok := groups[f.Recommendation]
		if !ok {
			groups[f.Recommendation] = &group{text: f.Recommendation, severity: f.Severity, count: 1}
			continue
		}
		g.count++
		if f.Severity.MoreSevere(g.severity) {
			g.severity = f.Severity
		}
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].severity != ordered[j].severity {
			return ordered[i].severity.MoreSevere(ordered[j].severity)
		}
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].text < ordered[j].text
	})

	out := make([]string, 0, len(ordered))
	for _, g := range ordered {
		out = append(out, g.text)
	}
	return out
}
