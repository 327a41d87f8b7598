// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/pricing"
)

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CartResponse represents a cart with its lines and totals
type CartResponse struct {
	SessionID string    `json:"session_id,omitempty"`
	OrgID     *uint     `json:"org_id,omitempty"`
	Items     []Line    `json:"items"`
	Totals    Totals    `json:"totals"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateLineRequest represents a quantity update for a cart line
type UpdateLineRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// QuantityControllerFor builds a quantity controller over this service for
// one cart line, using the configured stepper tuning. A nil payload disables
// the immediate add-from-zero path.
func (s *Service) QuantityControllerFor(lineID uint, payload *AddItemPayload) *QuantityController {
	return NewQuantityController(s, QuantityControllerConfig{
		LineID:         lineID,
		Committed:      s.LineQuantity(lineID),
		AddPayload:     payload,
		Scheduler:      TimerScheduler{Interval: s.config.Cart.FrameInterval},
		FlyoutDuration: s.config.Cart.FlyoutDuration,
		MaxIncrement:   s.config.Cart.MaxPendingIncrement,
	})
}

// GetCart retrieves the cart for an organization or session
func (s *Service) GetCart(orgID *uint, sessionID string) (*CartResponse, error) {
	var items []Line
	var createdAt, updatedAt time.Time

	if orgID != nil {
		var dbLines []Line
		err := s.db.Where("org_id = ?", *orgID).Order("id").Find(&dbLines).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve org cart: %w", err)
		}
		items = dbLines

		if len(dbLines) > 0 {
			createdAt = dbLines[0].CreatedAt
			updatedAt = dbLines[0].UpdatedAt
		} else {
			createdAt = time.Now().UTC()
			updatedAt = time.Now().UTC()
		}
	} else {
		sessionCart, err := s.getSessionCart(sessionID)
		if err != nil {
			return nil, err
		}

		items = make([]Line, len(sessionCart.Items))
		for i, item := range sessionCart.Items {
			items[i] = Line{
				SupplierID:      item.SupplierID,
				SupplierItemID:  item.SupplierItemID,
				Quantity:        item.Quantity,
				UnitPriceExVat:  item.UnitPriceExVat,
				UnitPriceIncVat: item.UnitPriceIncVat,
				VatRate:         item.VatRate,
				Unit:            item.Unit,
				CreatedAt:       item.AddedAt,
			}
		}

		createdAt = sessionCart.CreatedAt
		updatedAt = sessionCart.UpdatedAt
	}

	return &CartResponse{
		SessionID: sessionID,
		OrgID:     orgID,
		Items:     items,
		Totals:    ComputeTotals(items),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// AddItem creates a cart line with the given quantity and returns its id.
// Adding an item that is already in the cart increases its quantity instead
// of creating a duplicate line.
func (s *Service) AddItem(payload AddItemPayload, quantity int) (uint, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive")
	}

	var existing Line
	result := s.db.Where("org_id = ? AND supplier_id = ? AND supplier_item_id = ?",
		payload.OrgID, payload.SupplierID, payload.SupplierItemID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		line := Line{
			OrgID:           payload.OrgID,
			SupplierID:      payload.SupplierID,
			SupplierItemID:  payload.SupplierItemID,
			Quantity:        quantity,
			UnitPriceExVat:  payload.UnitPriceExVat,
			UnitPriceIncVat: payload.UnitPriceIncVat,
			PackSize:        payload.PackSize,
			VatRate:         payload.VatRate,
			Unit:            payload.Unit,
		}
		if err := s.db.Create(&line).Error; err != nil {
			return 0, fmt.Errorf("failed to add cart line: %w", err)
		}
		return line.ID, nil
	} else if result.Error != nil {
		return 0, fmt.Errorf("failed to look up cart line: %w", result.Error)
	}

	existing.Quantity += quantity
	existing.UnitPriceExVat = payload.UnitPriceExVat // Update price in case it changed
	existing.UnitPriceIncVat = payload.UnitPriceIncVat
	if err := s.db.Save(&existing).Error; err != nil {
		return 0, fmt.Errorf("failed to update cart line: %w", err)
	}
	return existing.ID, nil
}

// UpdateQuantity sets the quantity of an existing cart line. Quantity zero
// removes the line.
func (s *Service) UpdateQuantity(lineID uint, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(lineID)
	}
	return s.db.Model(&Line{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

// RemoveItem deletes a cart line.
func (s *Service) RemoveItem(lineID uint) error {
	return s.db.Where("id = ?", lineID).Delete(&Line{}).Error
}

// LineQuantity reads the current persisted quantity of a line; 0 when the
// line does not exist.
func (s *Service) LineQuantity(lineID uint) int {
	var line Line
	if err := s.db.Where("id = ?", lineID).First(&line).Error; err != nil {
		return 0
	}
	return line.Quantity
}

// ClearCart removes all lines from the cart
func (s *Service) ClearCart(orgID *uint, sessionID string) error {
	if orgID != nil {
		return s.db.Where("org_id = ?", *orgID).Delete(&Line{}).Error
	}
	ctx := context.Background()
	return s.redisClient.Del(ctx, sessionCartKey(sessionID)).Err()
}

// MergeSessionCartToOrg merges a session cart into an organization cart
// when the session gets attached to an org.
func (s *Service) MergeSessionCartToOrg(orgID uint, sessionID string) error {
	sessionCart, err := s.getSessionCart(sessionID)
	if err != nil || len(sessionCart.Items) == 0 {
		return nil // No session cart to merge
	}

	for _, item := range sessionCart.Items {
		payload := AddItemPayload{
			OrgID:           &orgID,
			SupplierID:      item.SupplierID,
			SupplierItemID:  item.SupplierItemID,
			UnitPriceExVat:  item.UnitPriceExVat,
			UnitPriceIncVat: item.UnitPriceIncVat,
			VatRate:         item.VatRate,
			Unit:            item.Unit,
		}
		if _, err := s.AddItem(payload, item.Quantity); err != nil {
			return err
		}
	}

	return s.ClearCart(nil, sessionID)
}

// AddSessionItem adds or increments a line on a session cart.
func (s *Service) AddSessionItem(sessionID string, item SessionLine) error {
	sessionCart, err := s.getSessionCart(sessionID)
	if err != nil {
		return err
	}

	found := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].SupplierID == item.SupplierID &&
			sessionCart.Items[i].SupplierItemID == item.SupplierItemID {
			sessionCart.Items[i].Quantity += item.Quantity
			sessionCart.Items[i].UnitPriceExVat = item.UnitPriceExVat
			sessionCart.Items[i].UnitPriceIncVat = item.UnitPriceIncVat
			found = true
			break
		}
	}

	if !found {
		item.AddedAt = time.Now().UTC()
		sessionCart.Items = append(sessionCart.Items, item)
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveSessionCart(sessionID, sessionCart)
}

// UpdateSessionItem sets the quantity of a session cart line; zero removes it.
func (s *Service) UpdateSessionItem(sessionID, supplierID, supplierItemID string, quantity int) error {
	sessionCart, err := s.getSessionCart(sessionID)
	if err != nil {
		return err
	}

	found := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].SupplierID == supplierID &&
			sessionCart.Items[i].SupplierItemID == supplierItemID {
			if quantity <= 0 {
				sessionCart.Items = append(sessionCart.Items[:i], sessionCart.Items[i+1:]...)
			} else {
				sessionCart.Items[i].Quantity = quantity
			}
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("item not found in cart")
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveSessionCart(sessionID, sessionCart)
}

// ComputeTotals aggregates cart lines. A single pending-priced line makes
// every monetary total pending; quantities stay known.
func ComputeTotals(items []Line) Totals {
	totals := Totals{
		LineCount:     len(items),
		SubtotalExVat: pricing.Known(0),
		VatAmount:     pricing.Known(0),
		TotalIncVat:   pricing.Known(0),
	}

	for i := range items {
		line := &items[i]
		totals.TotalQuantity += line.Quantity

		sub := line.SubtotalExVat()
		totals.SubtotalExVat = totals.SubtotalExVat.Add(sub)
		totals.VatAmount = totals.VatAmount.Add(sub.Mul(line.VatRate))

		if line.UnitPriceIncVat == nil {
			totals.TotalIncVat = pricing.Pending()
		} else {
			totals.TotalIncVat = totals.TotalIncVat.AddFloat(*line.UnitPriceIncVat * float64(line.Quantity))
		}
	}

	return totals
}

// Private helper methods

func sessionCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *Service) getSessionCart(sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for session cart")
	}

	ctx := context.Background()

	cartData, err := s.redisClient.Get(ctx, sessionCartKey(sessionID)).Result()
	if err == redis.Nil {
		// Cart doesn't exist, return empty cart
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionLine{},
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
			ExpiresAt: time.Now().UTC().Add(s.config.Cart.SessionTTL),
		}, nil
	} else if err != nil {
		return nil, err
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(cartData), &sessionCart); err != nil {
		return nil, err
	}

	return &sessionCart, nil
}

func (s *Service) saveSessionCart(sessionID string, cart *SessionCart) error {
	ctx := context.Background()

	cartData, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	return s.redisClient.Set(ctx, sessionCartKey(sessionID), cartData, s.config.Cart.SessionTTL).Err()
}
