package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/argus/internal/contracts"
)

// CalculationDetector verifies the accounting identity
// Value in USD = Close Quantity * Price * Exchange Rate.
//
// Pure magnitude tests would flag every row of a ticker whose feed is
// consistently off by a unit factor, so rows are first tested against
// per-ticker systematic explanations (stable multiplier, stable additive
// shift, integer or reciprocal multiplier); explained rows are reported
// at Low severity. Unexplained rows go through hybrid z-score/percentage
// thresholds with a sign-mismatch override.
type CalculationDetector struct{}

func NewCalculationDetector() *CalculationDetector { return &CalculationDetector{} }

func (d *CalculationDetector) Name() string { return "calculation" }

const (
	// calcDiffFloor is the rounding floor: differences of at most $1
	// are never candidates.
	calcDiffFloor = 1.0
	// calcTheoreticalMin is the "cannot compute" cutoff for the
	// theoretical value.
	calcTheoreticalMin = 0.01
)

func (d *CalculationDetector) Evaluate(snap *contracts.Snapshot) []contracts.Finding {
	if !snap.HasColumns(contracts.ColCloseQuantity, contracts.ColPrice, contracts.ColExchangeRate,
		contracts.ColValueUSD, contracts.ColTicker, contracts.ColDate) {
		return nil
	}

	rows := snap.Positions
	n := len(rows)

	// Unknown inputs degrade to a ~0 theoretical value, which routes the
	// row into the "cannot compute" skip below instead of a false flag.
	theoretical := make([]float64, n)
	diff := make([]float64, n)
	pctDiff := make([]float64, n)
	ratio := make([]float64, n)
	reported := make([]float64, n)
	for i, p := range rows {
		qty := zeroIfNaN(p.CloseQuantity)
		price := zeroIfNaN(p.Price)
		fx := zeroIfNaN(p.ExchangeRate)
		reported[i] = zeroIfNaN(p.ValueUSD)

		theoretical[i] = qty * price * fx
		diff[i] = reported[i] - theoretical[i]

		base := reported[i]
		if base == 0 {
			base = 1
		}
		pctDiff[i] = diff[i] / base

		if math.Abs(theoretical[i]) > calcTheoreticalMin {
			ratio[i] = reported[i] / theoretical[i]
		}
	}

	z := zScores(pctDiff)
	sysMult, sysShift := systematicErrors(rows, ratio, diff)

	var findings []contracts.Finding
	for i, p := range rows {
		if math.Abs(diff[i]) <= calcDiffFloor {
			continue
		}

		pct := math.Abs(pctDiff[i])
		zAbs := math.Abs(z[i])
		mult := ratio[i]

		explained, explanation := explainRow(p.Ticker, theoretical[i], diff[i], mult, sysMult, sysShift)

		isOutlier := zAbs > 3 && pct > 0.05
		isLarge := pct > 0.10
		if !isOutlier && !isLarge && !explained {
			// Small unexplained noise.
			continue
		}

		var severity contracts.Severity
		switch {
		case explained:
			severity = contracts.SeverityLow
		case math.Abs(theoretical[i]) < calcTheoreticalMin:
			// Theoretical value is effectively zero: one of the inputs
			// is missing, which the completeness detector reports.
			continue
		case reported[i]*theoretical[i] < 0:
			severity = contracts.SeverityHigh
			explanation = "Sign Mismatch: Reported vs Calculated have opposite signs"
		case (zAbs > 5 && pct > 0.05) || pct > 0.30:
			severity = contracts.SeverityHigh
		case (zAbs > 3 && pct > 0.05) || pct > 0.15:
			severity = contracts.SeverityMedium
		default:
			severity = contracts.SeverityLow
		}

		var reasons []string
		if explanation != "" {
			reasons = append(reasons, explanation)
		}
		if pct > 0.30 {
			reasons = append(reasons, fmt.Sprintf("Absolute Diff > 30%% (%.1f%%)", pct*100))
		} else if pct > 0.15 {
			reasons = append(reasons, fmt.Sprintf("Absolute Diff > 15%% (%.1f%%)", pct*100))
		}
		if zAbs > 5 {
			reasons = append(reasons, fmt.Sprintf("Extreme Statistical Outlier (Z=%.1f > 5)", zAbs))
		} else if zAbs > 3 {
			reasons = append(reasons, fmt.Sprintf("Statistical Outlier (Z=%.1f > 3)", zAbs))
		}

		findings = append(findings, contracts.Finding{
			Date:   p.Date,
			Ticker: p.Ticker,
			Type:   contracts.TypeCalculationError,
			Description: fmt.Sprintf("Value Mismatch: Reported %.2f vs Calc %.2f. Flagged due to: %s",
				reported[i], theoretical[i], strings.Join(reasons, " | ")),
			Severity: severity,
		})
	}

	return findings
}

// systematicErrors derives, per ticker with at least three rows, a stable
// reported/theoretical multiplier and a stable additive shift.
func systematicErrors(rows []contracts.Position, ratio, diff []float64) (map[string]float64, map[string]float64) {
	byTicker := make(map[string][]int)
	for i, p := range rows {
		byTicker[p.Ticker] = append(byTicker[p.Ticker], i)
	}

	sysMult := make(map[string]float64)
	sysShift := make(map[string]float64)
	for ticker, idx := range byTicker {
		if len(idx) < 3 {
			continue
		}

		var ratios []float64
		for _, i := range idx {
			if ratio[i] != 0 {
				ratios = append(ratios, ratio[i])
			}
		}
		// One observation has no spread; systematic patterns need at
		// least two rows to agree.
		if len(ratios) >= 2 {
			med := median(ratios)
			// Low spread and a real offset from 1: the whole series is
			// scaled, not occasionally wrong.
			if sampleStd(ratios) < 0.2 && math.Abs(med-1) > 0.05 {
				sysMult[ticker] = med
			}
		}

		var diffs []float64
		for _, i := range idx {
			if math.Abs(diff[i]) > 0.01 {
				diffs = append(diffs, diff[i])
			}
		}
		if len(diffs) >= 2 {
			med := median(diffs)
			if math.Abs(med) > 1 && sampleStd(diffs)/math.Abs(med) < 0.1 {
				sysShift[ticker] = med
			}
		}
	}
	return sysMult, sysShift
}

// explainRow applies the explanation precedence: systematic multiplier,
// systematic shift, integer multiplier, reciprocal multiplier (with the
// cents/unit x0.01 special case). The order is a convention the reported
// severities depend on.
func explainRow(ticker string, theoretical, diff, mult float64, sysMult, sysShift map[string]float64) (bool, string) {
	if math.Abs(theoretical) <= calcTheoreticalMin {
		return false, ""
	}

	if m, ok := sysMult[ticker]; ok && math.Abs(mult-m) < 0.25 {
		return true, fmt.Sprintf("Systematic Multiplier: x%.2f", m)
	}
	if s, ok := sysShift[ticker]; ok && math.Abs(diff-s)/math.Abs(s) < 0.1 {
		return true, fmt.Sprintf("Systematic Shift: %+.2f", s)
	}

	if math.Abs(mult) > 1.5 {
		nearest := math.Round(mult)
		if nearest != 0 && math.Abs(mult-nearest)/math.Abs(nearest) < 0.05 {
			return true, fmt.Sprintf("Likely missing multiplier: x%d", int(nearest))
		}
	} else if math.Abs(mult) < 0.9 && mult != 0 {
		if math.Abs(mult-0.01) < 0.001 {
			return true, "Likely unit mismatch: x0.01"
		}
		recip := 1 / mult
		nearest := math.Round(recip)
		if nearest != 0 && math.Abs(recip-nearest)/math.Abs(nearest) < 0.05 {
			return true, fmt.Sprintf("Likely missing multiplier: x%.4g or 1/%d", 1/nearest, int(nearest))
		}
	}

	return false, ""
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
