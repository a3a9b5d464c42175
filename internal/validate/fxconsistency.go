package validate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/argus/internal/contracts"
)

// FXConsistencyDetector checks that every asset denominated in the same
// currency uses the same exchange rate on any given day. When a
// (date, currency) group disagrees, the modal rate is the consensus and
// every deviating row is flagged: High beyond a 1% deviation, Medium
// below it. There is no Low tier; any deviation from consensus matters.
type FXConsistencyDetector struct{}

func NewFXConsistencyDetector() *FXConsistencyDetector { return &FXConsistencyDetector{} }

func (d *FXConsistencyDetector) Name() string { return "fx_consistency" }

type fxGroupKey struct {
	date     time.Time
	currency string
}

func (d *FXConsistencyDetector) Evaluate(snap *contracts.Snapshot) []contracts.Finding {
	if !snap.HasColumns(contracts.ColDate, contracts.ColCurrency,
		contracts.ColExchangeRate, contracts.ColTicker) {
		return nil
	}

	groups := make(map[fxGroupKey][]int)
	for i, p := range snap.Positions {
		if math.IsNaN(p.ExchangeRate) || p.ExchangeRate == 0 || strings.TrimSpace(p.Currency) == "" {
			continue
		}
		key := fxGroupKey{date: p.Date, currency: p.Currency}
		groups[key] = append(groups[key], i)
	}

	keys := make([]fxGroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if !keys[a].date.Equal(keys[b].date) {
			return keys[a].date.Before(keys[b].date)
		}
		return keys[a].currency < keys[b].currency
	})

	var findings []contracts.Finding
	for _, key := range keys {
		idx := groups[key]
		if len(idx) < 2 {
			continue
		}

		consensus, distinct := modalRate(snap.Positions, idx)
		if distinct < 2 {
			continue
		}

		for _, i := range idx {
			p := snap.Positions[i]
			if p.ExchangeRate == consensus {
				continue
			}
			deviation := math.Abs(p.ExchangeRate-consensus) / consensus

			severity := contracts.SeverityMedium
			if deviation > 0.01 {
				severity = contracts.SeverityHigh
			}

			findings = append(findings, contracts.Finding{
				Date:   key.date,
				Ticker: p.Ticker,
				Type:   contracts.TypeFXInconsistency,
				Description: fmt.Sprintf("FX Rate %s deviates from daily consensus %s for %s. Deviation: %.2f%%",
					formatRate(p.ExchangeRate), formatRate(consensus), key.currency, deviation*100),
				Severity: severity,
			})
		}
	}

	return findings
}

// modalRate returns the most frequent rate in the group (ties broken by
// the smaller rate) and the number of distinct rates observed.
func modalRate(positions []contracts.Position, idx []int) (float64, int) {
	counts := make(map[float64]int)
	for _, i := range idx {
		counts[positions[i].ExchangeRate]++
	}

	best := math.NaN()
	bestCount := 0
	for rate, count := range counts {
		if count > bestCount || (count == bestCount && rate < best) {
			best = rate
			bestCount = count
		}
	}
	return best, len(counts)
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
