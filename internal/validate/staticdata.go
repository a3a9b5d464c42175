package validate

import (
	"fmt"
	"strings"

	"github.com/wonny/argus/internal/contracts"
)

// StaticDataDetector checks that reference attributes stay constant per
// ticker over time. Missing/blank values are not conflicts (a field
// flipping USD -> blank -> USD is a completeness issue); two distinct
// non-blank values are. The consensus is the value observed on the most
// rows, and every row holding a different non-blank value is flagged.
type StaticDataDetector struct{}

func NewStaticDataDetector() *StaticDataDetector { return &StaticDataDetector{} }

func (d *StaticDataDetector) Name() string { return "static_data" }

type staticField struct {
	column   string
	value    func(p contracts.Position) string
	severity contracts.Severity
}

// A currency flip breaks every downstream number, so it outranks the
// classification fields; a name change is often just a rebranding.
var staticFields = []staticField{
	{contracts.ColCurrency, func(p contracts.Position) string { return p.Currency }, contracts.SeverityHigh},
	{contracts.ColCountry, func(p contracts.Position) string { return p.Country }, contracts.SeverityMedium},
	{contracts.ColSector, func(p contracts.Position) string { return p.Sector }, contracts.SeverityMedium},
	{contracts.ColIndustry, func(p contracts.Position) string { return p.Industry }, contracts.SeverityMedium},
	{contracts.ColShortName, func(p contracts.Position) string { return p.ShortName }, contracts.SeverityLow},
}

func (d *StaticDataDetector) Evaluate(snap *contracts.Snapshot) []contracts.Finding {
	var present []staticField
	for _, f := range staticFields {
		if snap.HasColumns(f.column) {
			present = append(present, f)
		}
	}
	if len(present) == 0 || !snap.HasColumns(contracts.ColTicker) {
		return nil
	}

	var findings []contracts.Finding
	tickers, groups := tickerGroups(snap.Positions)

	for _, ticker := range tickers {
		idx := groups[ticker]
		for _, field := range present {
			counts := make(map[string]int)
			for _, i := range idx {
				v := field.value(snap.Positions[i])
				if strings.TrimSpace(v) == "" {
					continue
				}
				counts[v]++
			}
			if len(counts) < 2 {
				continue
			}

			consensus := modalString(counts)
			for _, i := range idx {
				p := snap.Positions[i]
				v := field.value(p)
				if strings.TrimSpace(v) == "" || v == consensus {
					continue
				}
				findings = append(findings, contracts.Finding{
					Date:   p.Date,
					Ticker: ticker,
					Type:   contracts.TypeStaticInconsistency,
					Description: fmt.Sprintf("Static field '%s' changed. Found '%s', expected consensus '%s'.",
						field.column, v, consensus),
					Severity: field.severity,
				})
			}
		}
	}

	return findings
}

// modalString picks the most frequent value, ties broken
// lexicographically.
func modalString(counts map[string]int) string {
	best := ""
	bestCount := 0
	for v, count := range counts {
		if count > bestCount || (count == bestCount && v < best) {
			best = v
			bestCount = count
		}
	}
	return best
}
