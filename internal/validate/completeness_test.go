package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/argus/internal/contracts"
)

func goodRow(ticker string, dayN int) contracts.Position {
	return row(ticker, day(dayN), func(p *contracts.Position) {
		p.Price = 150
		p.ExchangeRate = 1
		p.CloseQuantity = 10
		p.Currency = "USD"
	})
}

func TestCompletenessDetector(t *testing.T) {
	d := NewCompletenessDetector()

	t.Run("clean rows produce nothing", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(goodRow("AAPL", 1), goodRow("MSFT", 1)))
		assert.Empty(t, findings)
	})

	t.Run("missing price is High", func(t *testing.T) {
		p := goodRow("AAPL", 1)
		p.Price = nan

		findings := d.Evaluate(snapshotOf(p))
		require.Len(t, findings, 1)
		assert.Equal(t, contracts.TypeMissingData, findings[0].Type)
		assert.Equal(t, contracts.SeverityHigh, findings[0].Severity)
		assert.Equal(t, "Missing value for critical column: 'Price'", findings[0].Description)
		assert.Equal(t, "AAPL", findings[0].Ticker)
	})

	t.Run("zero price is invalid, zero quantity is not", func(t *testing.T) {
		p := goodRow("AAPL", 1)
		p.Price = 0
		q := goodRow("MSFT", 1)
		q.CloseQuantity = 0

		findings := d.Evaluate(snapshotOf(p, q))
		require.Len(t, findings, 1)
		assert.Equal(t, contracts.TypeInvalidData, findings[0].Type)
		assert.Equal(t, "Invalid zero value for column: 'Price'", findings[0].Description)
	})

	t.Run("missing currency is Medium", func(t *testing.T) {
		p := goodRow("AAPL", 1)
		p.Currency = "  "

		findings := d.Evaluate(snapshotOf(p))
		require.Len(t, findings, 1)
		assert.Equal(t, contracts.SeverityMedium, findings[0].Severity)
	})

	t.Run("blank ticker reports as UNKNOWN", func(t *testing.T) {
		p := goodRow("", 1)

		findings := d.Evaluate(snapshotOf(p))
		require.Len(t, findings, 1)
		assert.Equal(t, "UNKNOWN", findings[0].Ticker)
		assert.Equal(t, "Missing value for critical column: 'P_Ticker'", findings[0].Description)
	})

	t.Run("missing date is High", func(t *testing.T) {
		p := goodRow("AAPL", 1)
		p.Date = time.Time{}

		findings := d.Evaluate(snapshotOf(p))
		require.Len(t, findings, 1)
		assert.Equal(t, contracts.SeverityHigh, findings[0].Severity)
		assert.Equal(t, "Missing value for critical column: 'Date'", findings[0].Description)
	})

	t.Run("absent column soft-skips", func(t *testing.T) {
		p := goodRow("AAPL", 1)
		p.Currency = ""

		// Source table never carried Currency: nothing to validate.
		snap := contracts.NewSnapshot([]contracts.Position{p}, nil, []string{
			contracts.ColDate, contracts.ColTicker, contracts.ColPrice,
			contracts.ColExchangeRate, contracts.ColCloseQuantity,
		})
		assert.Empty(t, d.Evaluate(snap))
	})

	t.Run("one row can hold several gaps", func(t *testing.T) {
		p := goodRow("AAPL", 1)
		p.Price = nan
		p.ExchangeRate = 0
		p.Currency = ""

		findings := d.Evaluate(snapshotOf(p))
		assert.Len(t, findings, 3)
	})
}
