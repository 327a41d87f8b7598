// internal/domain/pricing/errors.go
package pricing

import "fmt"

// UnitNotFoundError indicates a unit code missing from the reference table.
// These are configuration errors and should be surfaced, not swallowed.
type UnitNotFoundError struct {
	Code string
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("unit %q not found in unit table", e.Code)
}

// IncompatibleUnitsError indicates a conversion between units that do not
// share a base unit. A nil base unit is not a wildcard.
type IncompatibleUnitsError struct {
	FromCode string
	ToCode   string
}

func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("cannot convert %q to %q: units do not share a base unit", e.FromCode, e.ToCode)
}

// VatRuleNotFoundError indicates a VAT code missing from the rule table.
type VatRuleNotFoundError struct {
	Code string
}

func (e *VatRuleNotFoundError) Error() string {
	return fmt.Sprintf("VAT rule %q not found", e.Code)
}

// DivisionByZeroError indicates pack pricing with a usable quantity of zero
// or less, e.g. a zero pack quantity or a zero yield percentage.
type DivisionByZeroError struct {
	UsableQty float64
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("cannot derive unit price: usable quantity is %g", e.UsableQty)
}
