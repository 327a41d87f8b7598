// internal/domain/delivery/entity.go
package delivery

import (
	"time"

	"gorm.io/gorm"

	"github.com/your-org/procurement-backend/internal/domain/pricing"
)

// DefaultZone is used when a caller does not name a delivery zone.
const DefaultZone = "default"

// FeeTier is one step of a tiered delivery fee: the fee charged once the
// order subtotal reaches the tier threshold.
type FeeTier struct {
	Threshold float64 `json:"threshold"`
	Fee       float64 `json:"fee"`
}

// Rule represents the active delivery rule for one (supplier, zone) pair.
// When Tiers is non-empty it takes precedence over FlatFee for the
// under-threshold fee amount.
type Rule struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	SupplierID           string         `gorm:"not null;index:idx_delivery_rules_supplier_zone" json:"supplier_id"`
	Zone                 string         `gorm:"not null;default:'default';index:idx_delivery_rules_supplier_zone" json:"zone"`
	FreeThresholdExVat   *float64       `json:"free_threshold_ex_vat"`
	FlatFee              float64        `json:"flat_fee"`
	FuelSurchargePct     float64        `json:"fuel_surcharge_pct"`
	PalletDepositPerUnit float64        `json:"pallet_deposit_per_unit"`
	DeliveryDays         []int          `gorm:"type:jsonb;serializer:json" json:"delivery_days"` // 1=Mon..7=Sun
	Tiers                []FeeTier      `gorm:"type:jsonb;serializer:json" json:"tiers"`
	CutoffTime           *string        `json:"cutoff_time"` // informational, not read by the calculation
	IsActive             bool           `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Rule) TableName() string {
	return "delivery_rules"
}

// Calculation represents delivery cost and landed cost for one supplier
// group of an order. Monetary fields go pending when any line in the group
// has a pending price; quantity-derived fields stay known.
type Calculation struct {
	SupplierID           string         `json:"supplier_id"`
	SupplierName         string         `json:"supplier_name"`
	Zone                 string         `json:"zone"`
	SubtotalExVat        pricing.Amount `json:"subtotal_ex_vat"`
	DeliveryFee          pricing.Amount `json:"delivery_fee"`
	FuelSurcharge        pricing.Amount `json:"fuel_surcharge"`
	PalletDeposit        float64        `json:"pallet_deposit"`
	TotalDeliveryCost    pricing.Amount `json:"total_delivery_cost"`
	LandedCost           pricing.Amount `json:"landed_cost"`
	IsUnderThreshold     bool           `json:"is_under_threshold"`
	ThresholdAmount      *float64       `json:"threshold_amount"`
	AmountToFreeDelivery *float64       `json:"amount_to_free_delivery"`
	NextDeliveryDay      *string        `json:"next_delivery_day"`
}

// Suggestion points at a supplier whose order could still reach free
// delivery by adding more items.
type Suggestion struct {
	SupplierID           string  `json:"supplier_id"`
	SupplierName         string  `json:"supplier_name"`
	AmountToFreeDelivery float64 `json:"amount_to_free_delivery"`
	Message              string  `json:"message"`
}

// Warning flags a supplier whose order will incur a delivery fee as-is.
type Warning struct {
	SupplierID   string  `json:"supplier_id"`
	SupplierName string  `json:"supplier_name"`
	DeliveryFee  float64 `json:"delivery_fee"`
	Message      string  `json:"message"`
}

// OrderOptimization is the advisory output of OptimizeOrder. It never
// mutates the cart.
type OrderOptimization struct {
	Calculations      []Calculation  `json:"calculations"`
	Suggestions       []Suggestion   `json:"suggestions"`
	Warnings          []Warning      `json:"warnings"`
	TotalDeliveryCost pricing.Amount `json:"total_delivery_cost"`
}
