// internal/domain/pricing/service.go
package pricing

// Engine handles unit conversion and VAT business logic. It is stateless
// apart from the two immutable lookup tables supplied at construction.
type Engine struct {
	units    map[string]Unit
	vatRules map[string]VatRule
}

// NewEngine creates a new pricing engine over the given reference tables.
func NewEngine(units []Unit, vatRules []VatRule) *Engine {
	e := &Engine{
		units:    make(map[string]Unit, len(units)),
		vatRules: make(map[string]VatRule, len(vatRules)),
	}
	for _, u := range units {
		e.units[u.Code] = u
	}
	for _, r := range vatRules {
		e.vatRules[r.Code] = r
	}
	return e
}

// ConvertUnits converts a value between two units sharing a base unit.
// Converting a unit to itself returns the value unchanged, so no-op
// conversions never pick up float error.
func (e *Engine) ConvertUnits(value float64, fromCode, toCode string) (float64, error) {
	if fromCode == toCode {
		return value, nil
	}

	from, ok := e.units[fromCode]
	if !ok {
		return 0, &UnitNotFoundError{Code: fromCode}
	}
	to, ok := e.units[toCode]
	if !ok {
		return 0, &UnitNotFoundError{Code: toCode}
	}

	if !sameBaseUnit(from.BaseUnit, to.BaseUnit) {
		return 0, &IncompatibleUnitsError{FromCode: fromCode, ToCode: toCode}
	}

	return value * from.Factor() / to.Factor(), nil
}

// CalculateVat computes ex-VAT and inc-VAT amounts for a base amount.
// When inclusive, the base amount is taken as the inc-VAT amount and the
// ex-VAT amount is derived by dividing out the rate; otherwise the base
// amount is ex-VAT and the rate is added on top.
func (e *Engine) CalculateVat(baseAmount float64, vatCode string, inclusive bool) (VatBreakdown, error) {
	rule, ok := e.vatRules[vatCode]
	if !ok {
		return VatBreakdown{}, &VatRuleNotFoundError{Code: vatCode}
	}

	var breakdown VatBreakdown
	breakdown.VatRate = rule.Rate

	if inclusive {
		breakdown.IncVatAmount = baseAmount
		breakdown.ExVatAmount = baseAmount / (1 + rule.Rate)
	} else {
		breakdown.ExVatAmount = baseAmount
		breakdown.IncVatAmount = baseAmount * (1 + rule.Rate)
	}

	// Derived from the two amounts, never independently, so the breakdown
	// always sums exactly.
	breakdown.VatAmount = breakdown.IncVatAmount - breakdown.ExVatAmount

	return breakdown, nil
}

// CalculatePackPricing derives per-unit prices from a supplier pack price.
// yieldPct models the usable portion after trim and waste; 100 means no loss.
// The pack price is treated as VAT-exclusive.
func (e *Engine) CalculatePackPricing(packPrice, packQty float64, packUnitCode, targetUnitCode, vatCode string, yieldPct float64) (PackPricing, error) {
	convertedQty, err := e.ConvertUnits(packQty, packUnitCode, targetUnitCode)
	if err != nil {
		return PackPricing{}, err
	}

	usableQty := convertedQty * yieldPct / 100
	if usableQty <= 0 {
		return PackPricing{}, &DivisionByZeroError{UsableQty: usableQty}
	}

	vat, err := e.CalculateVat(packPrice, vatCode, false)
	if err != nil {
		return PackPricing{}, err
	}

	return PackPricing{
		PackPrice:       packPrice,
		PackQty:         convertedQty,
		PackUnit:        targetUnitCode,
		UnitPriceExVat:  vat.ExVatAmount / usableQty,
		UnitPriceIncVat: vat.IncVatAmount / usableQty,
		YieldPct:        yieldPct,
	}, nil
}

// sameBaseUnit reports whether two base units match. A nil base unit only
// matches another nil when the codes are equal, which ConvertUnits already
// short-circuits, so nil never matches here.
func sameBaseUnit(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
