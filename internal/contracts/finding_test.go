package contracts

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Greater(t, SeverityLow.Rank(), Severity("").Rank())
}

func TestSortFindings(t *testing.T) {
	d1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	findings := []Finding{
		{Date: d2, Ticker: "MSFT", Severity: SeverityLow},
		{Date: d1, Ticker: "MSFT", Severity: SeverityHigh},
		{Date: d1, Ticker: "AAPL", Severity: SeverityHigh},
		{Date: d2, Ticker: "AAPL", Severity: SeverityMedium},
		{Date: d1, Ticker: "AAPL", Severity: SeverityMedium},
	}
	SortFindings(findings)

	want := []Finding{
		{Date: d1, Ticker: "AAPL", Severity: SeverityHigh},
		{Date: d1, Ticker: "MSFT", Severity: SeverityHigh},
		{Date: d1, Ticker: "AAPL", Severity: SeverityMedium},
		{Date: d2, Ticker: "AAPL", Severity: SeverityMedium},
		{Date: d2, Ticker: "MSFT", Severity: SeverityLow},
	}
	assert.Equal(t, want, findings)
}

func TestCountBySeverity(t *testing.T) {
	counts := CountBySeverity([]Finding{
		{Severity: SeverityHigh},
		{Severity: SeverityHigh},
		{Severity: SeverityLow},
	})
	assert.Equal(t, 2, counts[SeverityHigh])
	assert.Equal(t, 0, counts[SeverityMedium])
	assert.Equal(t, 1, counts[SeverityLow])
}

func TestSnapshotColumns(t *testing.T) {
	snap := NewSnapshot(nil, nil, []string{ColDate, ColTicker, ColPrice})

	assert.True(t, snap.HasColumns(ColDate))
	assert.True(t, snap.HasColumns(ColDate, ColTicker, ColPrice))
	assert.False(t, snap.HasColumns(ColDate, ColValueUSD))
	assert.ElementsMatch(t, []string{ColDate, ColTicker, ColPrice}, snap.Columns())
}

func TestMissingPosition(t *testing.T) {
	p := MissingPosition()

	require.True(t, math.IsNaN(p.Price))
	require.True(t, math.IsNaN(p.CloseQuantity))
	require.True(t, math.IsNaN(p.OpenQuantity))
	require.True(t, math.IsNaN(p.ExchangeRate))
	require.True(t, math.IsNaN(p.ValueUSD))
	require.True(t, math.IsNaN(p.ClosingWeight))
	require.True(t, math.IsNaN(p.TradePrice))
	require.True(t, math.IsNaN(p.TradedToday))
	require.True(t, math.IsNaN(p.TradeWeight))

	assert.Empty(t, p.Ticker)
	assert.True(t, p.Date.IsZero())
}
