// internal/domain/pricing/service_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func testEngine() *Engine {
	units := []Unit{
		{Code: "kg", Name: "Kilogram", BaseUnit: strPtr("kg"), ConversionFactor: f64Ptr(1)},
		{Code: "g", Name: "Gram", BaseUnit: strPtr("kg"), ConversionFactor: f64Ptr(0.001)},
		{Code: "l", Name: "Litre", BaseUnit: strPtr("l"), ConversionFactor: f64Ptr(1)},
		{Code: "ml", Name: "Millilitre", BaseUnit: strPtr("l"), ConversionFactor: f64Ptr(0.001)},
		{Code: "pcs", Name: "Piece", BaseUnit: strPtr("pcs"), ConversionFactor: nil},
		{Code: "box", Name: "Box", BaseUnit: nil, ConversionFactor: nil},
		{Code: "crate", Name: "Crate", BaseUnit: nil, ConversionFactor: nil},
	}
	vatRules := []VatRule{
		{Code: "standard", Rate: 0.24},
		{Code: "reduced", Rate: 0.12},
		{Code: "zero", Rate: 0},
	}
	return NewEngine(units, vatRules)
}

func TestConvertUnits(t *testing.T) {
	e := testEngine()

	t.Run("kg to g", func(t *testing.T) {
		got, err := e.ConvertUnits(1, "kg", "g")
		require.NoError(t, err)
		assert.Equal(t, 1000.0, got)
	})

	t.Run("g to kg", func(t *testing.T) {
		got, err := e.ConvertUnits(500, "g", "kg")
		require.NoError(t, err)
		assert.Equal(t, 0.5, got)
	})

	t.Run("identity short circuit", func(t *testing.T) {
		// Same code must return the value unchanged, even for a unit
		// that would otherwise fail compatibility checks.
		got, err := e.ConvertUnits(3.7, "box", "box")
		require.NoError(t, err)
		assert.Equal(t, 3.7, got)
	})

	t.Run("missing conversion factor defaults to 1", func(t *testing.T) {
		got, err := e.ConvertUnits(12, "pcs", "pcs")
		require.NoError(t, err)
		assert.Equal(t, 12.0, got)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := e.ConvertUnits(1, "kg", "stone")
		var notFound *UnitNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "stone", notFound.Code)
	})

	t.Run("incompatible base units", func(t *testing.T) {
		_, err := e.ConvertUnits(1, "kg", "l")
		var incompatible *IncompatibleUnitsError
		require.ErrorAs(t, err, &incompatible)
	})

	t.Run("nil base unit is not a wildcard", func(t *testing.T) {
		_, err := e.ConvertUnits(1, "box", "crate")
		var incompatible *IncompatibleUnitsError
		require.ErrorAs(t, err, &incompatible)

		_, err = e.ConvertUnits(1, "box", "kg")
		require.ErrorAs(t, err, &incompatible)
	})

	t.Run("round trip", func(t *testing.T) {
		v := 123.456
		toG, err := e.ConvertUnits(v, "kg", "g")
		require.NoError(t, err)
		back, err := e.ConvertUnits(toG, "g", "kg")
		require.NoError(t, err)
		assert.InDelta(t, v, back, 1e-9)
	})
}

func TestCalculateVat(t *testing.T) {
	e := testEngine()

	t.Run("exclusive", func(t *testing.T) {
		got, err := e.CalculateVat(100, "standard", false)
		require.NoError(t, err)
		assert.Equal(t, 100.0, got.ExVatAmount)
		assert.InDelta(t, 124.0, got.IncVatAmount, 1e-9)
		assert.InDelta(t, 24.0, got.VatAmount, 1e-9)
		assert.Equal(t, 0.24, got.VatRate)
	})

	t.Run("inclusive", func(t *testing.T) {
		got, err := e.CalculateVat(124, "standard", true)
		require.NoError(t, err)
		assert.Equal(t, 124.0, got.IncVatAmount)
		assert.InDelta(t, 100.0, got.ExVatAmount, 1e-9)
		assert.InDelta(t, 24.0, got.VatAmount, 1e-9)
	})

	t.Run("vat amount is internally consistent", func(t *testing.T) {
		got, err := e.CalculateVat(99.99, "reduced", true)
		require.NoError(t, err)
		assert.Equal(t, got.IncVatAmount-got.ExVatAmount, got.VatAmount)
	})

	t.Run("exclusive then inclusive round trip", func(t *testing.T) {
		ex, err := e.CalculateVat(87.65, "standard", false)
		require.NoError(t, err)
		inc, err := e.CalculateVat(ex.IncVatAmount, "standard", true)
		require.NoError(t, err)
		assert.InDelta(t, 87.65, inc.ExVatAmount, 1e-9)
	})

	t.Run("zero rate", func(t *testing.T) {
		got, err := e.CalculateVat(50, "zero", false)
		require.NoError(t, err)
		assert.Equal(t, 50.0, got.IncVatAmount)
		assert.Equal(t, 0.0, got.VatAmount)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := e.CalculateVat(100, "luxury", false)
		var notFound *VatRuleNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "luxury", notFound.Code)
	})
}

func TestCalculatePackPricing(t *testing.T) {
	e := testEngine()

	t.Run("with yield loss", func(t *testing.T) {
		got, err := e.CalculatePackPricing(100, 1, "kg", "g", "standard", 50)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, got.PackQty)
		assert.Equal(t, "g", got.PackUnit)
		assert.InDelta(t, 0.2, got.UnitPriceExVat, 1e-9)
		assert.InDelta(t, 0.248, got.UnitPriceIncVat, 1e-9)
		assert.Equal(t, 50.0, got.YieldPct)
	})

	t.Run("full yield", func(t *testing.T) {
		got, err := e.CalculatePackPricing(240, 10, "kg", "kg", "standard", 100)
		require.NoError(t, err)
		assert.InDelta(t, 24.0, got.UnitPriceExVat, 1e-9)
		assert.InDelta(t, 29.76, got.UnitPriceIncVat, 1e-9)
	})

	t.Run("zero usable quantity", func(t *testing.T) {
		_, err := e.CalculatePackPricing(100, 0, "kg", "kg", "standard", 100)
		var divZero *DivisionByZeroError
		require.ErrorAs(t, err, &divZero)

		_, err = e.CalculatePackPricing(100, 1, "kg", "kg", "standard", 0)
		require.ErrorAs(t, err, &divZero)
	})

	t.Run("unknown pack unit", func(t *testing.T) {
		_, err := e.CalculatePackPricing(100, 1, "stone", "kg", "standard", 100)
		var notFound *UnitNotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("unknown vat code", func(t *testing.T) {
		_, err := e.CalculatePackPricing(100, 1, "kg", "kg", "luxury", 100)
		var notFound *VatRuleNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}
