package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/argus/internal/contracts"
)

// reconTolerance is the break tolerance on quantity identities.
const reconTolerance = 1e-6

// ReconciliationDetector verifies two independent quantity identities:
//
//	intra-day: Close Quantity = Open Quantity + Traded Today
//	inter-day: Open Quantity(T) = Close Quantity(T-1), per ticker
//
// No quantity is ever zero-filled: a missing input makes the identity
// undefined for that row and the row is excluded, not flagged. The break
// percentage uses the smaller of the two magnitudes as its base so
// overstatement and understatement are penalized symmetrically. A row
// can produce both an intra-day and an inter-day finding.
type ReconciliationDetector struct{}

func NewReconciliationDetector() *ReconciliationDetector { return &ReconciliationDetector{} }

func (d *ReconciliationDetector) Name() string { return "reconciliation" }

func (d *ReconciliationDetector) Evaluate(snap *contracts.Snapshot) []contracts.Finding {
	if !snap.HasColumns(contracts.ColDate, contracts.ColTicker, contracts.ColCloseQuantity,
		contracts.ColOpenQuantity, contracts.ColTradedToday) {
		return nil
	}

	tickers, groups := tickerGroups(snap.Positions)

	// Flatten to ticker/date order once; both identities report in it.
	var order []int
	prevClose := make(map[int]float64)
	for _, t := range tickers {
		idx := groups[t]
		for k, i := range idx {
			order = append(order, i)
			if k == 0 {
				prevClose[i] = math.NaN()
			} else {
				prevClose[i] = snap.Positions[idx[k-1]].CloseQuantity
			}
		}
	}

	var findings []contracts.Finding
	findings = append(findings, d.checkIdentity(snap, order,
		contracts.TypeReconIntraDay,
		func(p contracts.Position, i int) (actual, expected float64) {
			return p.CloseQuantity, p.OpenQuantity + p.TradedToday
		},
		func(p contracts.Position, i int, diff float64, reason string) string {
			return fmt.Sprintf("Intra-day Mismatch: Open %.2f + Traded %.2f != Close %.2f. Diff: %.2f. Flagged due to: %s",
				p.OpenQuantity, p.TradedToday, p.CloseQuantity, diff, reason)
		})...)
	findings = append(findings, d.checkIdentity(snap, order,
		contracts.TypeReconInterDay,
		func(p contracts.Position, i int) (actual, expected float64) {
			return p.OpenQuantity, prevClose[i]
		},
		func(p contracts.Position, i int, diff float64, reason string) string {
			return fmt.Sprintf("Inter-day Mismatch: Open %.2f != Prev Close %.2f. Diff: %.2f. Flagged due to: %s",
				p.OpenQuantity, prevClose[i], diff, reason)
		})...)

	return findings
}

// checkIdentity evaluates one identity over the ordered rows. The z-score
// comparison set is the violating rows' relative breaks; the base is
// replaced by 1 when the expected quantity is 0.
func (d *ReconciliationDetector) checkIdentity(
	snap *contracts.Snapshot,
	order []int,
	findingType string,
	identity func(p contracts.Position, i int) (actual, expected float64),
	describe func(p contracts.Position, i int, diff float64, reason string) string,
) []contracts.Finding {
	var violating []int
	var relative []float64
	for _, i := range order {
		p := snap.Positions[i]
		actual, expected := identity(p, i)
		diff := actual - expected
		if math.IsNaN(diff) || math.Abs(diff) <= reconTolerance {
			continue
		}
		base := expected
		if base == 0 {
			base = 1
		}
		violating = append(violating, i)
		relative = append(relative, diff/base)
	}
	z := zScores(relative)

	var findings []contracts.Finding
	for k, i := range violating {
		p := snap.Positions[i]
		actual, expected := identity(p, i)
		diff := actual - expected

		minBase := math.Min(math.Abs(actual), math.Abs(expected))
		if minBase == 0 {
			minBase = 1
		}
		pct := math.Abs(diff) / minBase
		zAbs := math.Abs(z[k])

		var severity contracts.Severity
		switch {
		case pct > 10.0 || (zAbs > 5 && pct > 0.05):
			severity = contracts.SeverityHigh
		case pct > 0.30 || (zAbs > 3 && pct > 0.05):
			severity = contracts.SeverityMedium
		default:
			severity = contracts.SeverityLow
		}

		var reasons []string
		if pct > 10.0 {
			reasons = append(reasons, fmt.Sprintf("Massive Break > 1000%% (%.1f%%)", pct*100))
		} else if pct > 0.30 {
			reasons = append(reasons, fmt.Sprintf("Significant Break > 30%% (%.1f%%)", pct*100))
		}
		if zAbs > 5 {
			reasons = append(reasons, fmt.Sprintf("Extreme Statistical Outlier (Z=%.1f > 5)", zAbs))
		} else if zAbs > 3 {
			reasons = append(reasons, fmt.Sprintf("Statistical Outlier (Z=%.1f > 3)", zAbs))
		}
		if len(reasons) == 0 {
			reasons = append(reasons, "Minor Break")
		}

		findings = append(findings, contracts.Finding{
			Date:        p.Date,
			Ticker:      p.Ticker,
			Type:        findingType,
			Description: describe(p, i, diff, strings.Join(reasons, " | ")),
			Severity:    severity,
		})
	}
	return findings
}
