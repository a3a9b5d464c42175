package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/argus/internal/contracts"
)

// CompletenessDetector flags rows whose critical fields are missing or
// hold an invalid zero. It runs before the statistical detectors in the
// registry: those exclude unknown values from their computations and rely
// on this detector to report why the value was unusable, so the same gap
// is never flagged twice.
type CompletenessDetector struct{}

func NewCompletenessDetector() *CompletenessDetector { return &CompletenessDetector{} }

func (d *CompletenessDetector) Name() string { return "completeness" }

// completenessCheck is one entry of the fixed column checklist.
type completenessCheck struct {
	column      string
	zeroAllowed bool
	severity    contracts.Severity
}

// The checklist order is the reporting order. Close Quantity tolerates
// zero (a flat position is valid); string columns are never zero-checked.
var completenessChecks = []completenessCheck{
	{contracts.ColTicker, false, contracts.SeverityHigh},
	{contracts.ColDate, false, contracts.SeverityHigh},
	{contracts.ColPrice, false, contracts.SeverityHigh},
	{contracts.ColExchangeRate, false, contracts.SeverityHigh},
	{contracts.ColCloseQuantity, true, contracts.SeverityHigh},
	{contracts.ColCurrency, true, contracts.SeverityMedium},
}

func (d *CompletenessDetector) Evaluate(snap *contracts.Snapshot) []contracts.Finding {
	var findings []contracts.Finding

	for _, check := range completenessChecks {
		// A column absent from the source table cannot be validated
		// row by row.
		if !snap.HasColumns(check.column) {
			continue
		}

		for _, p := range snap.Positions {
			if isMissing(p, check.column) {
				findings = append(findings, contracts.Finding{
					Date:        p.Date,
					Ticker:      tickerOrUnknown(p),
					Type:        contracts.TypeMissingData,
					Description: fmt.Sprintf("Missing value for critical column: '%s'", check.column),
					Severity:    check.severity,
				})
			}
		}

		if check.zeroAllowed {
			continue
		}
		for _, p := range snap.Positions {
			if v, numeric := numericField(p, check.column); numeric && v == 0 {
				findings = append(findings, contracts.Finding{
					Date:        p.Date,
					Ticker:      tickerOrUnknown(p),
					Type:        contracts.TypeInvalidData,
					Description: fmt.Sprintf("Invalid zero value for column: '%s'", check.column),
					Severity:    check.severity,
				})
			}
		}
	}

	return findings
}

func isMissing(p contracts.Position, column string) bool {
	switch column {
	case contracts.ColTicker:
		return strings.TrimSpace(p.Ticker) == ""
	case contracts.ColDate:
		return p.Date.IsZero()
	case contracts.ColCurrency:
		return strings.TrimSpace(p.Currency) == ""
	default:
		v, numeric := numericField(p, column)
		return numeric && math.IsNaN(v)
	}
}

// numericField maps a checklist column onto the row's numeric value.
// Non-numeric columns report numeric=false and are exempt from the
// zero-value check.
func numericField(p contracts.Position, column string) (float64, bool) {
	switch column {
	case contracts.ColPrice:
		return p.Price, true
	case contracts.ColExchangeRate:
		return p.ExchangeRate, true
	case contracts.ColCloseQuantity:
		return p.CloseQuantity, true
	default:
		return 0, false
	}
}

func tickerOrUnknown(p contracts.Position) string {
	if strings.TrimSpace(p.Ticker) == "" {
		return "UNKNOWN"
	}
	return p.Ticker
}
