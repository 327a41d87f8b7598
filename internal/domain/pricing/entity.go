// internal/domain/pricing/entity.go
package pricing

import (
	"time"

	"gorm.io/gorm"
)

// Unit represents a unit of measure in the reference table.
// Units sharing the same BaseUnit are mutually convertible; the factor
// converts one unit into its base unit (e.g. g -> kg has factor 0.001).
type Unit struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Code             string         `gorm:"uniqueIndex;not null" json:"code"`
	Name             string         `gorm:"not null" json:"name"`
	BaseUnit         *string        `gorm:"index" json:"base_unit"`
	ConversionFactor *float64       `json:"conversion_factor"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Unit) TableName() string {
	return "units"
}

// Factor returns the conversion factor, treating a missing factor as 1.
func (u *Unit) Factor() float64 {
	if u.ConversionFactor == nil {
		return 1
	}
	return *u.ConversionFactor
}

// VatRule represents a VAT rate looked up by code. Rate is a fraction
// (0.24 means 24%). The engine performs no validity-window resolution;
// callers supply the applicable code.
type VatRule struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Code       string         `gorm:"uniqueIndex;not null" json:"code"`
	Rate       float64        `gorm:"not null" json:"rate"`
	CategoryID *uint          `gorm:"index" json:"category_id"`
	ValidFrom  *time.Time     `json:"valid_from"`
	ValidTo    *time.Time     `json:"valid_to"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (VatRule) TableName() string {
	return "vat_rules"
}

// VatBreakdown represents a VAT calculation result. VatAmount is always
// IncVatAmount - ExVatAmount so the three amounts stay internally consistent.
type VatBreakdown struct {
	ExVatAmount  float64 `json:"ex_vat_amount"`
	IncVatAmount float64 `json:"inc_vat_amount"`
	VatAmount    float64 `json:"vat_amount"`
	VatRate      float64 `json:"vat_rate"`
}

// PackPricing represents derived per-unit pricing for a supplier pack.
type PackPricing struct {
	PackPrice       float64 `json:"pack_price"`
	PackQty         float64 `json:"pack_qty"` // converted to PackUnit
	PackUnit        string  `json:"pack_unit"`
	UnitPriceExVat  float64 `json:"unit_price_ex_vat"`
	UnitPriceIncVat float64 `json:"unit_price_inc_vat"`
	YieldPct        float64 `json:"yield_pct"`
}
