package contracts

import (
	"math"
	"time"
)

// Source column names. The loader maps CSV headers onto Position fields
// using these exact names; detectors use them to declare requirements.
const (
	ColDate          = "Date"
	ColTicker        = "P_Ticker"
	ColPrice         = "Price"
	ColCloseQuantity = "Close Quantity"
	ColOpenQuantity  = "Open Quantity"
	ColExchangeRate  = "Exchange Rate"
	ColValueUSD      = "Value in USD"
	ColClosingWeight = "Closing Weights"
	ColTradePrice    = "Trade Price"
	ColTradedToday   = "Traded Today"
	ColCurrency      = "Currency"
	ColCountry       = "Country"
	ColSector        = "Sector"
	ColIndustry      = "Industry"
	ColShortName     = "Short_Name"
	ColSide          = "Side"
	ColTradeWeight   = "Trade Weight"
)

// Position is one per-ticker, per-date row of the positions table.
// Numeric fields use NaN for "unknown"; absence is never equivalent to
// zero. String fields use "" for missing, Date uses the zero time.
type Position struct {
	Date          time.Time
	Ticker        string
	Price         float64
	CloseQuantity float64
	OpenQuantity  float64
	ExchangeRate  float64
	ValueUSD      float64
	ClosingWeight float64
	TradePrice    float64
	TradedToday   float64
	Currency      string
	Country       string
	Sector        string
	Industry      string
	ShortName     string
	Side          string
	TradeWeight   float64
}

// Trade is the derived subset of positions where trading occurred.
type Trade struct {
	Date        time.Time
	Ticker      string
	TradedToday float64
	TradePrice  float64
	Side        string
	TradeWeight float64
	Currency    string
}

// Snapshot is the immutable input to a validation run: the positions and
// trades tables plus the set of columns that were present in the source.
// Detectors read it concurrently and must never mutate it.
type Snapshot struct {
	Positions []Position
	Trades    []Trade

	columns map[string]bool
}

// NewSnapshot builds a snapshot. columns lists the source table's column
// names so detectors can soft-skip when a required column is absent.
func NewSnapshot(positions []Position, trades []Trade, columns []string) *Snapshot {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return &Snapshot{Positions: positions, Trades: trades, columns: set}
}

// HasColumns reports whether every named column exists in the source table.
func (s *Snapshot) HasColumns(cols ...string) bool {
	for _, c := range cols {
		if !s.columns[c] {
			return false
		}
	}
	return true
}

// Columns returns the recorded column names in no particular order.
func (s *Snapshot) Columns() []string {
	out := make([]string, 0, len(s.columns))
	for c := range s.columns {
		out = append(out, c)
	}
	return out
}

// MissingPosition is the NaN-initialized row; the loader starts from this
// so unparsed numeric cells stay "unknown" instead of zero.
func MissingPosition() Position {
	nan := math.NaN()
	return Position{
		Price:         nan,
		CloseQuantity: nan,
		OpenQuantity:  nan,
		ExchangeRate:  nan,
		ValueUSD:      nan,
		ClosingWeight: nan,
		TradePrice:    nan,
		TradedToday:   nan,
		TradeWeight:   nan,
	}
}
