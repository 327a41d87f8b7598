// internal/interfaces/http/handlers/delivery.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/cart"
	"github.com/your-org/procurement-backend/internal/domain/delivery"
)

// DeliveryHandler handles delivery cost endpoints
type DeliveryHandler struct {
	calculator *delivery.Calculator
	config     *config.Config
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(db *gorm.DB, cfg *config.Config) *DeliveryHandler {
	calculator := delivery.NewCalculator(delivery.NewGormRuleStore(db), delivery.CalculatorConfig{
		CacheTTL: cfg.Delivery.RuleCacheTTL,
	})

	return &DeliveryHandler{
		calculator: calculator,
		config:     cfg,
	}
}

// EstimateRequest carries the cart lines to price delivery for
type EstimateRequest struct {
	Items []cart.Line `json:"items" binding:"required"`
}

// EstimateOrder handles POST /delivery/estimate. Returns one calculation per
// supplier in the order, in first-appearance order.
func (h *DeliveryHandler) EstimateOrder(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	calculations, err := h.calculator.CalculateOrder(c.Request.Context(), req.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to calculate delivery costs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": calculations,
	})
}

// OptimizeOrder handles POST /delivery/optimize. Suggests how to reach free
// delivery thresholds and flags suppliers that carry a delivery fee.
func (h *DeliveryHandler) OptimizeOrder(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	optimization, err := h.calculator.OptimizeOrder(c.Request.Context(), req.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to optimize order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": optimization,
	})
}
