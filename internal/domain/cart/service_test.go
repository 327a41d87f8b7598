// internal/domain/cart/service_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceOf(v float64) *float64 { return &v }

func TestComputeTotals(t *testing.T) {
	t.Run("all prices known", func(t *testing.T) {
		items := []Line{
			{SupplierID: "sup-1", Quantity: 2, UnitPriceExVat: priceOf(10), UnitPriceIncVat: priceOf(12.4), VatRate: 0.24},
			{SupplierID: "sup-2", Quantity: 3, UnitPriceExVat: priceOf(5), UnitPriceIncVat: priceOf(5.6), VatRate: 0.12},
		}

		totals := ComputeTotals(items)

		assert.Equal(t, 2, totals.LineCount)
		assert.Equal(t, 5, totals.TotalQuantity)

		subtotal, ok := totals.SubtotalExVat.Value()
		require.True(t, ok)
		assert.InDelta(t, 35.0, subtotal, 1e-9)

		vat, ok := totals.VatAmount.Value()
		require.True(t, ok)
		assert.InDelta(t, 2*10*0.24+3*5*0.12, vat, 1e-9)

		total, ok := totals.TotalIncVat.Value()
		require.True(t, ok)
		assert.InDelta(t, 2*12.4+3*5.6, total, 1e-9)
	})

	t.Run("one pending line poisons monetary totals", func(t *testing.T) {
		items := []Line{
			{SupplierID: "sup-1", Quantity: 2, UnitPriceExVat: priceOf(10), UnitPriceIncVat: priceOf(12.4)},
			{SupplierID: "sup-2", Quantity: 3}, // price still loading
		}

		totals := ComputeTotals(items)

		assert.True(t, totals.SubtotalExVat.IsPending())
		assert.True(t, totals.VatAmount.IsPending())
		assert.True(t, totals.TotalIncVat.IsPending())

		// Quantities are always known.
		assert.Equal(t, 5, totals.TotalQuantity)
		assert.Equal(t, 2, totals.LineCount)
	})

	t.Run("empty cart", func(t *testing.T) {
		totals := ComputeTotals(nil)

		subtotal, ok := totals.SubtotalExVat.Value()
		require.True(t, ok)
		assert.Equal(t, 0.0, subtotal)
		assert.Equal(t, 0, totals.TotalQuantity)
	})
}
