package engine

import (
	"math"

	"github.com/scanward/scanward/internal/audit"
)

// DefaultSeverityWeights are the documented scoring weights. They are
// configurable, but the defaults are the contract the headline metric is
// tested against.
var DefaultSeverityWeights = map[audit.Severity]float64{
	audit.SeverityCritical: 15,
	audit.SeverityHigh:     10,
	audit.SeverityMedium:   5,
	audit.SeverityLow:      2,
}

// Risk bands over the 0-100 score.
const (
	RiskBandStable   = "STABLE"
	RiskBandWarning  = "WARNING"
	RiskBandCritical = "CRITICAL"
)

// RiskScore computes the density-based risk score:
//
//	min(100, 100 * Σ severityWeight(f) / max(1, totalLines/200))
//
// i.e. aggregate issue weight normalized per 200 lines of code, clamped to
// [0,100]. An empty finding set always scores 0.
func RiskScore(findings []audit.Finding, totalLines int, weights map[audit.Severity]float64) float64 {
	if len(findings) == 0 {
		return 0
	}
	if weights == nil {
		weights = DefaultSeverityWeights
	}

	var sum float64
	for _, f := range findings {
		sum += weights[f.Severity]
	}

	denom := math.Max(1, float64(totalLines)/200)
	return math.Min(100, 100*sum/denom)
}

// RiskBand maps a score to its band: [0,39] STABLE, [40,79] WARNING,
// [80,100] CRITICAL.
func RiskBand(score float64) string {
	switch {
	case score < 40:
		return RiskBandStable
	case score < 80:
		return RiskBandWarning
	default:
		return RiskBandCritical
	}
}
