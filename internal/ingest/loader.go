// Package ingest turns a raw CSV export into the typed snapshot the
// validation engine consumes. Ingestion failures (missing file, wrong
// extension, malformed CSV) are hard errors; cell-level coercion
// failures become missing values and are left for the engine to report.
package ingest

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/argus/internal/contracts"
)

// Loader reads one portfolio snapshot file.
type Loader struct {
	path string
}

// NewLoader validates the file path up front so callers fail fast on
// obviously wrong input.
func NewLoader(path string) (*Loader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("snapshot file: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		return nil, fmt.Errorf("snapshot file %s: only CSV files are supported", path)
	}
	return &Loader{path: path}, nil
}

// Load parses the file into an immutable snapshot: the positions table
// plus the derived trades table (rows where Traded Today is present and
// non-zero).
func (l *Loader) Load() (*contracts.Snapshot, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse snapshot csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse snapshot csv: empty file")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	unusable := unusableNumericColumns(header, records[1:])

	positions := make([]contracts.Position, 0, len(records)-1)
	for _, record := range records[1:] {
		p := contracts.MissingPosition()
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			if unusable[header[i]] {
				continue
			}
			setField(&p, header[i], strings.TrimSpace(cell))
		}
		positions = append(positions, p)
	}

	return contracts.NewSnapshot(positions, extractTrades(positions), header), nil
}

// numericColumns are the headers that must coerce to float64.
var numericColumns = map[string]bool{
	contracts.ColPrice:         true,
	contracts.ColCloseQuantity: true,
	contracts.ColOpenQuantity:  true,
	contracts.ColExchangeRate:  true,
	contracts.ColValueUSD:      true,
	contracts.ColClosingWeight: true,
	contracts.ColTradePrice:    true,
	contracts.ColTradedToday:   true,
	contracts.ColTradeWeight:   true,
}

// unusableNumericColumns finds numeric columns where fewer than 80% of
// the non-blank cells parse. Such a column is mislabeled or textual;
// keeping its few parseable cells would mix units with garbage, so the
// whole column is treated as unknown.
func unusableNumericColumns(header []string, records [][]string) map[string]bool {
	type tally struct{ nonBlank, parsed int }
	tallies := make(map[string]*tally)

	for _, record := range records {
		for i, cell := range record {
			if i >= len(header) || !numericColumns[header[i]] {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			t := tallies[header[i]]
			if t == nil {
				t = &tally{}
				tallies[header[i]] = t
			}
			t.nonBlank++
			if !math.IsNaN(parseNumber(cell)) {
				t.parsed++
			}
		}
	}

	unusable := make(map[string]bool)
	for col, t := range tallies {
		if float64(t.parsed) < 0.8*float64(t.nonBlank) {
			unusable[col] = true
		}
	}
	return unusable
}

// setField maps one CSV cell onto its Position field. Unknown columns
// are kept in the snapshot's column set but carry no value.
func setField(p *contracts.Position, column, cell string) {
	switch column {
	case contracts.ColDate:
		p.Date = parseDate(cell)
	case contracts.ColTicker:
		p.Ticker = cell
	case contracts.ColPrice:
		p.Price = parseNumber(cell)
	case contracts.ColCloseQuantity:
		p.CloseQuantity = parseNumber(cell)
	case contracts.ColOpenQuantity:
		p.OpenQuantity = parseNumber(cell)
	case contracts.ColExchangeRate:
		p.ExchangeRate = parseNumber(cell)
	case contracts.ColValueUSD:
		p.ValueUSD = parseNumber(cell)
	case contracts.ColClosingWeight:
		p.ClosingWeight = parseNumber(cell)
	case contracts.ColTradePrice:
		p.TradePrice = parseNumber(cell)
	case contracts.ColTradedToday:
		p.TradedToday = parseNumber(cell)
	case contracts.ColCurrency:
		p.Currency = cell
	case contracts.ColCountry:
		p.Country = cell
	case contracts.ColSector:
		p.Sector = cell
	case contracts.ColIndustry:
		p.Industry = cell
	case contracts.ColShortName:
		p.ShortName = cell
	case contracts.ColSide:
		p.Side = cell
	case contracts.ColTradeWeight:
		p.TradeWeight = parseNumber(cell)
	}
}

// parseNumber coerces a cell to float64, stripping currency and percent
// decorations first. A percent sign is not just decoration: "4.8%" is
// the fraction 0.048, so percent cells are divided by 100. Unparseable
// cells become NaN, never zero: absence of a number is not the number
// zero.
func parseNumber(cell string) float64 {
	percent := strings.Contains(cell, "%")
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', '%', ' ':
			return -1
		}
		return r
	}, cell)
	if cleaned == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	if percent {
		v /= 100
	}
	return v
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// parseDate tries the layouts seen in portfolio exports; failures yield
// the zero time, which the completeness detector reports as missing.
func parseDate(cell string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t
		}
	}
	return time.Time{}
}

// extractTrades derives the trades table: every position row where a
// trade actually occurred today.
func extractTrades(positions []contracts.Position) []contracts.Trade {
	var trades []contracts.Trade
	for _, p := range positions {
		if math.IsNaN(p.TradedToday) || p.TradedToday == 0 {
			continue
		}
		trades = append(trades, contracts.Trade{
			Date:        p.Date,
			Ticker:      p.Ticker,
			TradedToday: p.TradedToday,
			TradePrice:  p.TradePrice,
			Side:        p.Side,
			TradeWeight: p.TradeWeight,
			Currency:    p.Currency,
		})
	}
	return trades
}
