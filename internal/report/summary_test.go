package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/argus/internal/contracts"
)

func sampleFindings() []contracts.Finding {
	d := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return []contracts.Finding{
		{Date: d, Ticker: "AAPL", Type: contracts.TypeMissingData, Description: "Missing value for critical column: 'Price'", Severity: contracts.SeverityHigh},
		{Date: d, Ticker: "AAPL", Type: contracts.TypeWeightMismatch, Description: "weight off", Severity: contracts.SeverityMedium},
		{Date: d, Ticker: "MSFT", Type: contracts.TypePriceSpike, Description: "spike", Severity: contracts.SeverityLow},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleFindings())

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.High)
	assert.Equal(t, 1, s.Medium)
	assert.Equal(t, 1, s.Low)
	assert.Equal(t, 2, s.ByTicker["AAPL"])
	assert.Equal(t, 1, s.ByType[contracts.TypePriceSpike])
	assert.Equal(t, "AAPL", s.TopTicker)
}

func TestFilterBySeverity(t *testing.T) {
	findings := sampleFindings()

	assert.Len(t, FilterBySeverity(findings, ""), 3)
	assert.Len(t, FilterBySeverity(findings, contracts.SeverityLow), 3)
	assert.Len(t, FilterBySeverity(findings, contracts.SeverityMedium), 2)

	high := FilterBySeverity(findings, contracts.SeverityHigh)
	require.Len(t, high, 1)
	assert.Equal(t, contracts.TypeMissingData, high[0].Type)
}

func TestWriteText(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteText(&buf, sampleFindings()))
	out := buf.String()

	assert.Contains(t, out, "Validation findings: 3 total (High: 1, Medium: 1, Low: 1)")
	assert.Contains(t, out, "Missing value for critical column: 'Price'")

	// Severity ordering: the High finding is printed before the Low one.
	assert.Less(t, strings.Index(out, "[High"), strings.Index(out, "[Low"))
}

func TestWriteTextEmpty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteText(&buf, nil))
	assert.Equal(t, "Validation findings: 0 total (High: 0, Medium: 0, Low: 0)\n", buf.String())
}
