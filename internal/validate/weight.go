package validate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wonny/argus/internal/contracts"
)

// WeightDetector compares each position's reported closing weight with
// the weight implied by its USD value against the daily portfolio total.
//
// Textual percents ("4.8%") are already fractions by the time they get
// here; the loader converts them at parse time. Bare numbers may still
// arrive percent-scaled (0-100) instead of fractional (0-1), so the
// scale is also detected from the median of the per-date weight sums: a
// median above 10 means the column is percent-scaled and is divided by
// 100. This is a heuristic, not a guarantee; a sparse dataset whose
// sums land near 10 can be misread.
type WeightDetector struct{}

func NewWeightDetector() *WeightDetector { return &WeightDetector{} }

func (d *WeightDetector) Name() string { return "weight" }

func (d *WeightDetector) Evaluate(snap *contracts.Snapshot) []contracts.Finding {
	if !snap.HasColumns(contracts.ColDate, contracts.ColValueUSD,
		contracts.ColClosingWeight, contracts.ColTicker) {
		return nil
	}

	rows := snap.Positions
	n := len(rows)

	values := make([]float64, n)
	weights := make([]float64, n)
	dailySums := make(map[time.Time]float64)
	dailyTotals := make(map[time.Time]float64)
	for i, p := range rows {
		values[i] = zeroIfNaN(p.ValueUSD)
		weights[i] = p.ClosingWeight
		dailyTotals[p.Date] += values[i]
		if !math.IsNaN(p.ClosingWeight) {
			dailySums[p.Date] += p.ClosingWeight
		}
	}

	if percentScaled(dailySums) {
		for i := range weights {
			weights[i] /= 100
		}
	}

	diffs := make([]float64, n)
	implied := make([]float64, n)
	for i, p := range rows {
		total := dailyTotals[p.Date]
		if total == 0 {
			total = 1
		}
		implied[i] = values[i] / total
		diffs[i] = implied[i] - weights[i]
	}
	z := zScores(diffs)

	var findings []contracts.Finding
	for i, p := range rows {
		// A zero value or missing weight is a completeness problem, not
		// a weight mismatch.
		if values[i] == 0 || math.IsNaN(weights[i]) {
			continue
		}

		diff := math.Abs(diffs[i])
		zAbs := math.Abs(z[i])
		if zAbs <= 3 && diff <= 0.001 {
			continue
		}

		var severity contracts.Severity
		switch {
		case zAbs > 5 || diff > 0.05:
			severity = contracts.SeverityHigh
		case zAbs > 3 || diff > 0.01:
			severity = contracts.SeverityMedium
		default:
			severity = contracts.SeverityLow
		}

		var reasons []string
		if diff > 0.05 {
			reasons = append(reasons, fmt.Sprintf("Absolute Diff > 5%% (%.1f%%)", diff*100))
		} else if diff > 0.01 {
			reasons = append(reasons, fmt.Sprintf("Absolute Diff > 1%% (%.1f%%)", diff*100))
		}
		if zAbs > 5 {
			reasons = append(reasons, fmt.Sprintf("Extreme Statistical Outlier (Z=%.1f)", zAbs))
		} else if zAbs > 3 {
			reasons = append(reasons, fmt.Sprintf("Statistical Outlier (Z=%.1f)", zAbs))
		}

		findings = append(findings, contracts.Finding{
			Date:   p.Date,
			Ticker: p.Ticker,
			Type:   contracts.TypeWeightMismatch,
			Description: fmt.Sprintf("Reported Weight %.4f%% vs Implied %.4f%%. Flagged due to: %s",
				weights[i]*100, implied[i]*100, strings.Join(reasons, " | ")),
			Severity: severity,
		})
	}

	return findings
}

// percentScaled reports whether the weight column looks like 0-100
// percentages: the median per-date sum of a fractional column is ~1, of
// a percent column ~100.
func percentScaled(dailySums map[time.Time]float64) bool {
	if len(dailySums) == 0 {
		return false
	}
	sums := make([]float64, 0, len(dailySums))
	for _, s := range dailySums {
		sums = append(sums, s)
	}
	return median(sums) > 10
}
