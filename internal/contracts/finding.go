package contracts

import (
	"sort"
	"time"
)

// Severity classifies how urgently a finding needs human review.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Rank returns the ordinal position of the severity (Low < Medium < High).
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Finding types emitted by the detectors.
const (
	TypeMissingData         = "Missing Data"
	TypeInvalidData         = "Invalid Data"
	TypePriceSpike          = "Price Spike"
	TypeCalculationError    = "Calculation Error"
	TypeConsistencyError    = "Consistency Error (Trade vs Market)"
	TypeReconIntraDay       = "Reconciliation Error (Intra-day)"
	TypeReconInterDay       = "Reconciliation Error (Inter-day)"
	TypeFXInconsistency     = "FX Inconsistency"
	TypeWeightMismatch      = "Weight Mismatch"
	TypeStaticInconsistency = "Static Data Inconsistency"
)

// Finding is a single data-quality issue flagged for review.
// Findings are plain values with no identity beyond field equality;
// retention and presentation order are the caller's concern.
type Finding struct {
	Date        time.Time `json:"date"`
	Ticker      string    `json:"ticker"`
	Type        string    `json:"error_type"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
}

// SortFindings orders findings for presentation: severity descending,
// then date, then ticker. Detection order inside the engine is unaffected.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity.Rank() != findings[j].Severity.Rank() {
			return findings[i].Severity.Rank() > findings[j].Severity.Rank()
		}
		if !findings[i].Date.Equal(findings[j].Date) {
			return findings[i].Date.Before(findings[j].Date)
		}
		return findings[i].Ticker < findings[j].Ticker
	})
}

// CountBySeverity tallies findings per severity level.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
