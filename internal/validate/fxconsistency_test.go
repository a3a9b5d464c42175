package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/argus/internal/contracts"
)

func fxRow(ticker string, dayN int, currency string, rate float64) contracts.Position {
	return row(ticker, day(dayN), func(p *contracts.Position) {
		p.Currency = currency
		p.ExchangeRate = rate
	})
}

func TestFXConsistencyDetector(t *testing.T) {
	d := NewFXConsistencyDetector()

	t.Run("agreeing rates produce nothing", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			fxRow("005930", 1, "KRW", 1400),
			fxRow("000660", 1, "KRW", 1400),
			fxRow("AAPL", 1, "USD", 1),
		))
		assert.Empty(t, findings)
	})

	t.Run("small deviation from consensus is Medium", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			fxRow("005930", 1, "KRW", 1400),
			fxRow("000660", 1, "KRW", 1400),
			fxRow("035420", 1, "KRW", 1410),
		))
		require.Len(t, findings, 1)

		f := findings[0]
		assert.Equal(t, contracts.TypeFXInconsistency, f.Type)
		assert.Equal(t, "035420", f.Ticker)
		assert.Equal(t, contracts.SeverityMedium, f.Severity)
		assert.Equal(t, "FX Rate 1410 deviates from daily consensus 1400 for KRW. Deviation: 0.71%", f.Description)
	})

	t.Run("deviation beyond one percent is High", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			fxRow("005930", 1, "KRW", 1400),
			fxRow("000660", 1, "KRW", 1400),
			fxRow("035420", 1, "KRW", 1420),
		))
		require.Len(t, findings, 1)
		assert.Equal(t, contracts.SeverityHigh, findings[0].Severity)
	})

	t.Run("frequency tie picks the smaller rate as consensus", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			fxRow("005930", 1, "KRW", 1400),
			fxRow("000660", 1, "KRW", 1410),
		))
		require.Len(t, findings, 1)
		assert.Equal(t, "000660", findings[0].Ticker)
		assert.Contains(t, findings[0].Description, "consensus 1400")
	})

	t.Run("different days never share a consensus", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			fxRow("005930", 1, "KRW", 1400),
			fxRow("005930", 2, "KRW", 1420),
		))
		assert.Empty(t, findings)
	})

	t.Run("missing rates and blank currencies are excluded", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			fxRow("005930", 1, "KRW", 1400),
			fxRow("000660", 1, "KRW", nan),
			fxRow("035420", 1, "KRW", 0),
			fxRow("AAPL", 1, "", 1.5),
		))
		assert.Empty(t, findings)
	})
}
