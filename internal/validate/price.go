package validate

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/argus/internal/contracts"
)

// Price-spike thresholds. A move is a candidate when it is either a
// statistical outlier with a material floor, or large outright; the same
// test is applied against both chronological neighbors and the row must
// be a local peak or valley.
const (
	spikeZScore       = 3.0
	spikeReturnFloor  = 0.05
	spikeReturnHard   = 0.20
	spikeMediumReturn = 0.15
	spikeHighReturn   = 0.30
	spikeMagnitude    = 0.10
)

// PriceSpikeDetector flags one-day price reversals per ticker. Returns
// are geometric daily returns normalized for calendar-day gaps, so a 50%
// move over ten days is not a spike. Series endpoints cannot be flagged:
// one side of the neighbor test is undefined there.
type PriceSpikeDetector struct{}

func NewPriceSpikeDetector() *PriceSpikeDetector { return &PriceSpikeDetector{} }

func (d *PriceSpikeDetector) Name() string { return "price_spike" }

func (d *PriceSpikeDetector) Evaluate(snap *contracts.Snapshot) []contracts.Finding {
	if !snap.HasColumns(contracts.ColTicker, contracts.ColPrice) {
		return nil
	}

	var findings []contracts.Finding
	tickers, groups := tickerGroups(snap.Positions)

	for _, ticker := range tickers {
		idx := groups[ticker]
		n := len(idx)

		prevRet := make([]float64, n)
		nextRet := make([]float64, n)
		for i := 0; i < n; i++ {
			prevRet[i] = math.NaN()
			nextRet[i] = math.NaN()
			row := snap.Positions[idx[i]]
			if i > 0 {
				prev := snap.Positions[idx[i-1]]
				prevRet[i] = dailyReturn(row.Price, prev.Price, calendarGap(prev.Date, row.Date))
			}
			if i < n-1 {
				next := snap.Positions[idx[i+1]]
				nextRet[i] = dailyReturn(row.Price, next.Price, calendarGap(row.Date, next.Date))
			}
		}

		// Z-scores are computed per direction within the ticker's own
		// return series, not across the whole table.
		zPrev := zScores(prevRet)
		zNext := zScores(nextRet)

		for i := 0; i < n; i++ {
			rp, rn := prevRet[i], nextRet[i]
			if math.IsNaN(rp) || math.IsNaN(rn) {
				continue
			}
			if !significantMove(rp, zPrev[i]) || !significantMove(rn, zNext[i]) {
				continue
			}
			// Same sign on both sides: a peak or valley, not a
			// sustained move.
			if rp*rn <= 0 {
				continue
			}

			magnitude := (math.Abs(rp) + math.Abs(rn)) / 2
			z := (math.Abs(zPrev[i]) + math.Abs(zNext[i])) / 2

			var severity contracts.Severity
			switch {
			case (z > 5 && magnitude > spikeMagnitude) || magnitude > spikeHighReturn:
				severity = contracts.SeverityHigh
			case (z > spikeZScore && magnitude > spikeMagnitude) || magnitude > spikeMediumReturn:
				severity = contracts.SeverityMedium
			default:
				severity = contracts.SeverityLow
			}

			row := snap.Positions[idx[i]]
			findings = append(findings, contracts.Finding{
				Date:   row.Date,
				Ticker: ticker,
				Type:   contracts.TypePriceSpike,
				Description: fmt.Sprintf("Price spike detected: %.2f (Prev: %.2f, Next: %.2f)",
					row.Price, snap.Positions[idx[i-1]].Price, snap.Positions[idx[i+1]].Price),
				Severity: severity,
			})
		}
	}

	return findings
}

// significantMove is the candidate test for one neighbor direction.
func significantMove(ret, z float64) bool {
	return (math.Abs(z) > spikeZScore && math.Abs(ret) > spikeReturnFloor) ||
		math.Abs(ret) > spikeReturnHard
}

// dailyReturn compounds the move between two observations down to a
// per-calendar-day rate: (price/base)^(1/days) - 1.
func dailyReturn(price, base float64, days float64) float64 {
	if math.IsNaN(price) || math.IsNaN(base) || base == 0 {
		return math.NaN()
	}
	ret := math.Pow(price/base, 1/days) - 1
	if math.IsInf(ret, 0) {
		return math.NaN()
	}
	return ret
}

// calendarGap returns the elapsed days between two dates, treating
// missing dates and same-day duplicates as a one-day gap.
func calendarGap(from, to time.Time) float64 {
	if from.IsZero() || to.IsZero() {
		return 1
	}
	days := math.Floor(to.Sub(from).Hours() / 24)
	if days <= 0 {
		return 1
	}
	return days
}
