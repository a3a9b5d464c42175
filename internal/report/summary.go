package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/argus/internal/contracts"
)

// Summary aggregates a run's findings for presentation.
type Summary struct {
	Total     int
	High      int
	Medium    int
	Low       int
	ByType    map[string]int
	ByTicker  map[string]int
	TopTicker string
}

// Summarize builds a Summary from a finding set.
func Summarize(findings []contracts.Finding) Summary {
	s := Summary{
		Total:    len(findings),
		ByType:   make(map[string]int),
		ByTicker: make(map[string]int),
	}

	bySeverity := contracts.CountBySeverity(findings)
	s.High = bySeverity[contracts.SeverityHigh]
	s.Medium = bySeverity[contracts.SeverityMedium]
	s.Low = bySeverity[contracts.SeverityLow]

	for _, f := range findings {
		s.ByType[f.Type]++
		if f.Ticker != "" {
			s.ByTicker[f.Ticker]++
		}
	}

	best := 0
	for ticker, n := range s.ByTicker {
		if n > best || (n == best && ticker < s.TopTicker) {
			s.TopTicker = ticker
			best = n
		}
	}

	return s
}

// FilterBySeverity returns the findings at or above the given severity,
// preserving order.
func FilterBySeverity(findings []contracts.Finding, min contracts.Severity) []contracts.Finding {
	if min == "" {
		return findings
	}
	out := make([]contracts.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity.Rank() >= min.Rank() {
			out = append(out, f)
		}
	}
	return out
}

// WriteText renders findings as a plain-text report, severity-first.
func WriteText(w io.Writer, findings []contracts.Finding) error {
	sorted := make([]contracts.Finding, len(findings))
	copy(sorted, findings)
	contracts.SortFindings(sorted)

	s := Summarize(sorted)
	fmt.Fprintf(w, "Validation findings: %d total (High: %d, Medium: %d, Low: %d)\n",
		s.Total, s.High, s.Medium, s.Low)
	if s.Total == 0 {
		return nil
	}
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, f := range sorted {
		date := "----------"
		if !f.Date.IsZero() {
			date = f.Date.Format("2006-01-02")
		}
		ticker := f.Ticker
		if ticker == "" {
			ticker = "UNKNOWN"
		}
		if _, err := fmt.Fprintf(w, "[%-6s] %s %-10s %s\n  %s\n",
			f.Severity, date, ticker, f.Type, f.Description); err != nil {
			return err
		}
	}

	return nil
}
