// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/gorm"

	"github.com/your-org/procurement-backend/internal/domain/pricing"
)

// Line represents a cart line stored in database for organization carts.
// Prices may be nil while the supplier price list is still loading; a nil
// price is "pending", never zero.
type Line struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OrgID           *uint          `gorm:"index" json:"org_id"`
	SupplierID      string         `gorm:"not null;index" json:"supplier_id"`
	SupplierItemID  string         `gorm:"not null;index" json:"supplier_item_id"`
	Quantity        int            `gorm:"not null;default:1" json:"quantity"`
	UnitPriceExVat  *float64       `json:"unit_price_ex_vat"`
	UnitPriceIncVat *float64       `json:"unit_price_inc_vat"`
	PackSize        float64        `json:"pack_size"`
	VatRate         float64        `json:"vat_rate"`
	Unit            string         `json:"unit"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Line) TableName() string {
	return "cart_lines"
}

// SubtotalExVat returns quantity * ex-VAT unit price, pending when the
// price is not yet known.
func (l *Line) SubtotalExVat() pricing.Amount {
	if l.UnitPriceExVat == nil {
		return pricing.Pending()
	}
	return pricing.Known(*l.UnitPriceExVat * float64(l.Quantity))
}

// SessionCart represents a cart for a browsing session that has not been
// attached to an organization yet (stored in Redis).
type SessionCart struct {
	SessionID string        `json:"session_id"`
	Items     []SessionLine `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// SessionLine represents a cart line for a session cart.
type SessionLine struct {
	SupplierID      string    `json:"supplier_id"`
	SupplierItemID  string    `json:"supplier_item_id"`
	Quantity        int       `json:"quantity"`
	UnitPriceExVat  *float64  `json:"unit_price_ex_vat"`
	UnitPriceIncVat *float64  `json:"unit_price_inc_vat"`
	VatRate         float64   `json:"vat_rate"`
	Unit            string    `json:"unit"`
	AddedAt         time.Time `json:"added_at"`
}

// Totals represents calculated cart totals. Aggregates go pending as soon
// as any line has a pending price.
type Totals struct {
	LineCount     int            `json:"line_count"`     // Number of unique lines
	TotalQuantity int            `json:"total_quantity"` // Sum of all quantities
	SubtotalExVat pricing.Amount `json:"subtotal_ex_vat"`
	VatAmount     pricing.Amount `json:"vat_amount"`
	TotalIncVat   pricing.Amount `json:"total_inc_vat"`
}

// AddItemPayload carries everything needed to create a cart line when a
// quantity stepper fires on an item that is not in the cart yet.
type AddItemPayload struct {
	OrgID           *uint    `json:"org_id"`
	SupplierID      string   `json:"supplier_id" binding:"required"`
	SupplierItemID  string   `json:"supplier_item_id" binding:"required"`
	UnitPriceExVat  *float64 `json:"unit_price_ex_vat"`
	UnitPriceIncVat *float64 `json:"unit_price_inc_vat"`
	PackSize        float64  `json:"pack_size"`
	VatRate         float64  `json:"vat_rate"`
	Unit            string   `json:"unit"`
}
