// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/cart"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, redisClient, cfg),
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	orgID := h.getOrgID(c)
	sessionID := h.getOrCreateSessionID(c)

	cartResponse, err := h.cartService.GetCart(orgID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	orgID := h.getOrgID(c)
	sessionID := h.getOrCreateSessionID(c)

	var req struct {
		cart.AddItemPayload
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if orgID != nil {
		payload := req.AddItemPayload
		payload.OrgID = orgID

		lineID, err := h.cartService.AddItem(payload, req.Quantity)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Item added to cart successfully",
			"data":    gin.H{"line_id": lineID},
		})
		return
	}

	item := cart.SessionLine{
		SupplierID:      req.SupplierID,
		SupplierItemID:  req.SupplierItemID,
		Quantity:        req.Quantity,
		UnitPriceExVat:  req.UnitPriceExVat,
		UnitPriceIncVat: req.UnitPriceIncVat,
		VatRate:         req.VatRate,
		Unit:            req.Unit,
	}
	if err := h.cartService.AddSessionItem(sessionID, item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
	})
}

// UpdateLine handles PUT /cart/items/:id. Quantity zero removes the line.
func (h *CartHandler) UpdateLine(c *gin.Context) {
	lineID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid line ID",
		})
		return
	}

	var req cart.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.cartService.UpdateQuantity(uint(lineID), req.Quantity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart line updated successfully",
	})
}

// RemoveLine handles DELETE /cart/items/:id
func (h *CartHandler) RemoveLine(c *gin.Context) {
	lineID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid line ID",
		})
		return
	}

	if err := h.cartService.RemoveItem(uint(lineID)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	orgID := h.getOrgID(c)
	sessionID := h.getOrCreateSessionID(c)

	if err := h.cartService.ClearCart(orgID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// MergeSessionCart handles POST /cart/merge. Attaches a session cart to an
// organization cart once the org is known.
func (h *CartHandler) MergeSessionCart(c *gin.Context) {
	orgID := h.getOrgID(c)
	if orgID == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Organization ID required",
		})
		return
	}

	sessionID := h.getOrCreateSessionID(c)

	if err := h.cartService.MergeSessionCartToOrg(*orgID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to merge cart",
		})
		return
	}

	cartResponse, err := h.cartService.GetCart(orgID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve merged cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session cart merged successfully",
		"data":    cartResponse,
	})
}

// getOrgID reads the organization ID header; nil means a session cart.
func (h *CartHandler) getOrgID(c *gin.Context) *uint {
	orgIDHeader := c.GetHeader("X-Org-ID")
	if orgIDHeader == "" {
		return nil
	}
	orgID, err := strconv.ParseUint(orgIDHeader, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(orgID)
	return &id
}

// getOrCreateSessionID gets session ID from cookie or creates a new one
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		if sessionID = c.GetHeader("X-Session-ID"); sessionID == "" {
			sessionID = uuid.New().String()
		}

		// Set session cookie (24 hours)
		c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
	}

	return sessionID
}
