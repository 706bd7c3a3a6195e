package engine

import (
	"math"
	"testing"

	"github.com/scanward/scanward/internal/audit"
)

func findingsWith(severities ...audit.Severity) []audit.Finding {
	out := make([]audit.Finding, 0, len(severities))
	for _, s := range severities {
		out = append(out, audit.Finding{Severity: s})
	}
	return out
}

func TestRiskScoreEmptyIsZero(t *testing.T) {
	if got := RiskScore(nil, 100000, nil); got != 0 {
		t.Errorf("empty findings scored %v, want 0", got)
	}
	if got := RiskScore(nil, 0, nil); got != 0 {
		t.Errorf("empty findings on empty tree scored %v, want 0", got)
	}
}

func TestRiskScoreClampsAtHundred(t *testing.T) {
	findings := findingsWith(
		audit.SeverityCritical, audit.SeverityCritical,
		audit.SeverityHigh, audit.SeverityHigh,
	)
	if got := RiskScore(findings, 200, nil); got != 100 {
		t.Errorf("dense findings scored %v, want clamped 100", got)
	}
}

func TestRiskScoreDensityNormalization(t *testing.T) {
	// One LOW finding (weight 2) across 40000 lines: denom 200, score 1.
	findings := findingsWith(audit.SeverityLow)
	if got := RiskScore(findings, 40000, nil); math.Abs(got-1) > 1e-9 {
		t.Errorf("got %v, want 1", got)
	}

	// Same finding set on a smaller tree scores higher.
	if small, large := RiskScore(findings, 4000, nil), RiskScore(findings, 40000, nil); small <= large {
		t.Errorf("density should raise the score: %v vs %v", small, large)
	}
}

func TestRiskScoreMinimumDenominator(t *testing.T) {
	// Below 200 lines the denominator floors at 1.
	findings := findingsWith(audit.SeverityLow)
	tiny := RiskScore(findings, 10, nil)
	twoHundred := RiskScore(findings, 200, nil)
	if tiny != twoHundred {
		t.Errorf("denominator floor broken: %v vs %v", tiny, twoHundred)
	}
}

func TestRiskScoreCustomWeights(t *testing.T) {
	weights := map[audit.Severity]float64{audit.SeverityLow: 100}
	findings := findingsWith(audit.SeverityLow)
	if got := RiskScore(findings, 40000, weights); math.Abs(got-50) > 1e-9 {
		t.Errorf("custom weights ignored: got %v, want 50", got)
	}
}

func TestRiskScoreBounds(t *testing.T) {
	cases := []struct {
		findings []audit.Finding
		lines    int
	}{
		{nil, 0},
		{findingsWith(audit.SeverityLow), 1},
		{findingsWith(audit.SeverityCritical), 1},
		{findingsWith(audit.SeverityMedium, audit.SeverityMedium), 1000000},
	}
	for _, c := range cases {
		got := RiskScore(c.findings, c.lines, nil)
		if got < 0 || got > 100 {
			t.Errorf("score %v outside [0,100] for %d findings over %d lines", got, len(c.findings), c.lines)
		}
	}
}

func TestRiskBandBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, RiskBandStable},
		{39, RiskBandStable},
		{39.9, RiskBandStable},
		{40, RiskBandWarning},
		{79.9, RiskBandWarning},
		{80, RiskBandCritical},
		{100, RiskBandCritical},
	}
	for _, c := range cases {
		if got := RiskBand(c.score); got != c.want {
			t.Errorf("band(%v): got %s, want %s", c.score, got, c.want)
		}
	}
}
