// internal/domain/pricing/amount.go
package pricing

import "encoding/json"

// Amount is a monetary value that is either known or still pending
// (e.g. a cart line whose supplier price has not loaded yet). Arithmetic
// on a pending amount stays pending, so an unknown line can never be
// silently counted as zero in an aggregate.
type Amount struct {
	value float64
	known bool
}

// Known returns an amount with a known value.
func Known(value float64) Amount {
	return Amount{value: value, known: true}
}

// Pending returns an amount whose value is not yet known.
func Pending() Amount {
	return Amount{}
}

// IsPending reports whether the value is still unknown.
func (a Amount) IsPending() bool {
	return !a.known
}

// Value returns the amount and whether it is known.
func (a Amount) Value() (float64, bool) {
	return a.value, a.known
}

// Add returns the sum of two amounts; pending if either is pending.
func (a Amount) Add(b Amount) Amount {
	if !a.known || !b.known {
		return Pending()
	}
	return Known(a.value + b.value)
}

// AddFloat returns the amount increased by a known value.
func (a Amount) AddFloat(v float64) Amount {
	return a.Add(Known(v))
}

// Mul returns the amount scaled by a factor; pending stays pending.
func (a Amount) Mul(factor float64) Amount {
	if !a.known {
		return Pending()
	}
	return Known(a.value * factor)
}

// LessThan reports whether the amount is known and below the limit.
func (a Amount) LessThan(limit float64) bool {
	return a.known && a.value < limit
}

// MarshalJSON encodes a pending amount as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.known {
		return []byte("null"), nil
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON decodes null as pending.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Pending()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Known(v)
	return nil
}
