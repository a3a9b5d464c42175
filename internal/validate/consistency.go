package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/argus/internal/contracts"
)

// ConsistencyDetector compares the executed trade price against the
// market price reported for the same day. Only rows with an actual trade
// and both prices present are evaluated. A 5% deviation floor always
// gates z-score-only triggers, so tiny deviations in very clean datasets
// do not turn into findings.
type ConsistencyDetector struct{}

func NewConsistencyDetector() *ConsistencyDetector { return &ConsistencyDetector{} }

func (d *ConsistencyDetector) Name() string { return "trade_consistency" }

func (d *ConsistencyDetector) Evaluate(snap *contracts.Snapshot) []contracts.Finding {
	if !snap.HasColumns(contracts.ColDate, contracts.ColTicker, contracts.ColPrice,
		contracts.ColTradePrice, contracts.ColTradedToday) {
		return nil
	}

	var idx []int
	for i, p := range snap.Positions {
		if math.IsNaN(p.TradedToday) || p.TradedToday == 0 {
			continue
		}
		if math.IsNaN(p.Price) || p.Price == 0 || math.IsNaN(p.TradePrice) || p.TradePrice == 0 {
			continue
		}
		idx = append(idx, i)
	}
	if len(idx) == 0 {
		return nil
	}

	pcts := make([]float64, len(idx))
	for k, i := range idx {
		p := snap.Positions[i]
		pcts[k] = math.Abs(p.TradePrice-p.Price) / math.Abs(p.Price)
	}
	z := zScores(pcts)

	var findings []contracts.Finding
	for k, i := range idx {
		p := snap.Positions[i]
		pct := pcts[k]
		zAbs := math.Abs(z[k])

		var severity contracts.Severity
		switch {
		case (zAbs > 5 && pct > 0.05) || pct > 0.20:
			severity = contracts.SeverityHigh
		case (zAbs > 3 && pct > 0.05) || pct > 0.10:
			severity = contracts.SeverityMedium
		case (zAbs > 2 && pct > 0.05) || pct > 0.05:
			severity = contracts.SeverityLow
		default:
			continue
		}

		var reasons []string
		if pct > 0.20 {
			reasons = append(reasons, fmt.Sprintf("Absolute Diff > 20%% (%.1f%%)", pct*100))
		} else if pct > 0.10 {
			reasons = append(reasons, fmt.Sprintf("Absolute Diff > 10%% (%.1f%%)", pct*100))
		}
		if zAbs > 5 {
			reasons = append(reasons, fmt.Sprintf("Extreme Statistical Outlier (Z=%.1f > 5)", zAbs))
		} else if zAbs > 3 {
			reasons = append(reasons, fmt.Sprintf("Statistical Outlier (Z=%.1f > 3)", zAbs))
		}

		findings = append(findings, contracts.Finding{
			Date:   p.Date,
			Ticker: p.Ticker,
			Type:   contracts.TypeConsistencyError,
			Description: fmt.Sprintf("Price Mismatch: Trade Price %.2f vs Market Price %.2f. Diff: %.1f%% (Z=%.1f). Flagged due to: %s",
				p.TradePrice, p.Price, pct*100, zAbs, strings.Join(reasons, " | ")),
			Severity: severity,
		})
	}

	return findings
}
