package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/argus/internal/contracts"
)

func qtyRow(ticker string, dayN int, open, traded, close float64) contracts.Position {
	return row(ticker, day(dayN), func(p *contracts.Position) {
		p.OpenQuantity = open
		p.TradedToday = traded
		p.CloseQuantity = close
	})
}

func TestReconciliationDetector(t *testing.T) {
	d := NewReconciliationDetector()

	t.Run("balanced books produce nothing", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			qtyRow("AAPL", 1, 100, 10, 110),
			qtyRow("AAPL", 2, 110, 0, 110),
			qtyRow("AAPL", 3, 110, -10, 100),
		))
		assert.Empty(t, findings)
	})

	t.Run("small intra-day break is a Minor Break", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			qtyRow("AAPL", 1, 100, 10, 111),
		))
		require.Len(t, findings, 1)

		f := findings[0]
		assert.Equal(t, contracts.TypeReconIntraDay, f.Type)
		assert.Equal(t, contracts.SeverityLow, f.Severity)
		assert.Equal(t, "Intra-day Mismatch: Open 100.00 + Traded 10.00 != Close 111.00. Diff: 1.00. Flagged due to: Minor Break", f.Description)
	})

	t.Run("massive intra-day break is High", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			qtyRow("AAPL", 1, 1, 0, 50),
		))
		require.Len(t, findings, 1)
		assert.Equal(t, contracts.SeverityHigh, findings[0].Severity)
		assert.Contains(t, findings[0].Description, "Massive Break > 1000%")
	})

	t.Run("inter-day break against the previous close", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			qtyRow("AAPL", 1, 100, 10, 110),
			qtyRow("AAPL", 2, 100, 0, 100),
		))
		require.Len(t, findings, 1)

		f := findings[0]
		assert.Equal(t, contracts.TypeReconInterDay, f.Type)
		assert.Equal(t, day(2), f.Date)
		assert.Contains(t, f.Description, "Open 100.00 != Prev Close 110.00")
	})

	t.Run("first row per ticker has no inter-day identity", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			qtyRow("AAPL", 1, 500, 0, 500),
		))
		assert.Empty(t, findings)
	})

	t.Run("missing quantity excludes the row instead of flagging it", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			qtyRow("AAPL", 1, nan, 10, 110),
		))
		assert.Empty(t, findings)
	})

	t.Run("intra-day findings come before inter-day findings", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			// day 2: both identities broken
			qtyRow("AAPL", 1, 100, 10, 110),
			qtyRow("AAPL", 2, 120, 0, 125),
		))
		require.Len(t, findings, 2)
		assert.Equal(t, contracts.TypeReconIntraDay, findings[0].Type)
		assert.Equal(t, contracts.TypeReconInterDay, findings[1].Type)
	})

	t.Run("a tiny residual is inside tolerance", func(t *testing.T) {
		findings := d.Evaluate(snapshotOf(
			qtyRow("AAPL", 1, 100, 10.0000000001, 110),
		))
		assert.Empty(t, findings)
	})
}
