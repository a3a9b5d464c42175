package validate

import (
	"math"
	"time"

	"github.com/wonny/argus/internal/contracts"
)

var nan = math.NaN()

// day returns the n-th test date (day 1 = 2026-03-01).
func day(n int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

// row builds a position with every numeric field unknown, then applies
// the overrides.
func row(ticker string, d time.Time, set func(p *contracts.Position)) contracts.Position {
	p := contracts.MissingPosition()
	p.Ticker = ticker
	p.Date = d
	if set != nil {
		set(&p)
	}
	return p
}

var allColumns = []string{
	contracts.ColDate,
	contracts.ColTicker,
	contracts.ColPrice,
	contracts.ColCloseQuantity,
	contracts.ColOpenQuantity,
	contracts.ColExchangeRate,
	contracts.ColValueUSD,
	contracts.ColClosingWeight,
	contracts.ColTradePrice,
	contracts.ColTradedToday,
	contracts.ColCurrency,
	contracts.ColCountry,
	contracts.ColSector,
	contracts.ColIndustry,
	contracts.ColShortName,
}

// snapshotOf wraps positions in a snapshot that declares every column
// present.
func snapshotOf(positions ...contracts.Position) *contracts.Snapshot {
	return contracts.NewSnapshot(positions, nil, allColumns)
}
