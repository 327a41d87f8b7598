// internal/interfaces/http/handlers/pricing.go
package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/domain/pricing"
)

// PricingHandler handles unit conversion, VAT and pack pricing endpoints
type PricingHandler struct {
	db     *gorm.DB
	config *config.Config

	mu     sync.Mutex
	engine *pricing.Engine
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(db *gorm.DB, cfg *config.Config) *PricingHandler {
	return &PricingHandler{
		db:     db,
		config: cfg,
	}
}

// ConvertRequest represents a unit conversion request
type ConvertRequest struct {
	Value float64 `json:"value"`
	From  string  `json:"from" binding:"required"`
	To    string  `json:"to" binding:"required"`
}

// VatRequest represents a VAT calculation request
type VatRequest struct {
	Amount    float64 `json:"amount"`
	VatCode   string  `json:"vat_code" binding:"required"`
	Inclusive bool    `json:"inclusive"`
}

// PackPricingRequest represents a pack pricing calculation request
type PackPricingRequest struct {
	PackPrice  float64 `json:"pack_price" binding:"required"`
	PackQty    float64 `json:"pack_qty" binding:"required"`
	PackUnit   string  `json:"pack_unit" binding:"required"`
	TargetUnit string  `json:"target_unit" binding:"required"`
	VatCode    string  `json:"vat_code" binding:"required"`
	YieldPct   float64 `json:"yield_pct"`
}

// Convert handles POST /pricing/convert
func (h *PricingHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	engine, err := h.getEngine()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load pricing reference data",
		})
		return
	}

	result, err := engine.ConvertUnits(req.Value, req.From, req.To)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"value": result,
			"unit":  req.To,
		},
	})
}

// CalculateVat handles POST /pricing/vat
func (h *PricingHandler) CalculateVat(c *gin.Context) {
	var req VatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	engine, err := h.getEngine()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load pricing reference data",
		})
		return
	}

	breakdown, err := engine.CalculateVat(req.Amount, req.VatCode, req.Inclusive)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": breakdown,
	})
}

// CalculatePackPricing handles POST /pricing/pack
func (h *PricingHandler) CalculatePackPricing(c *gin.Context) {
	var req PackPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	engine, err := h.getEngine()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load pricing reference data",
		})
		return
	}

	yieldPct := req.YieldPct
	if yieldPct == 0 {
		yieldPct = 100
	}

	result, err := engine.CalculatePackPricing(
		req.PackPrice, req.PackQty, req.PackUnit, req.TargetUnit, req.VatCode, yieldPct)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// getEngine loads the unit and VAT reference tables on first use. The tables
// are reference data seeded at startup, so one load per process is enough.
func (h *PricingHandler) getEngine() (*pricing.Engine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engine != nil {
		return h.engine, nil
	}

	var units []pricing.Unit
	if err := h.db.Find(&units).Error; err != nil {
		return nil, err
	}

	var vatRules []pricing.VatRule
	if err := h.db.Find(&vatRules).Error; err != nil {
		return nil, err
	}

	h.engine = pricing.NewEngine(units, vatRules)
	return h.engine, nil
}
