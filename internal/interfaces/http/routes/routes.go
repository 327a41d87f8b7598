// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/interfaces/http/handlers"
)

// SetupRoutes wires all API v1 routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupPricingRoutes(rg, db, cfg)
	SetupDeliveryRoutes(rg, db, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg)
}

// SetupPricingRoutes sets up unit conversion and VAT related routes
func SetupPricingRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	pricingHandler := handlers.NewPricingHandler(db, cfg)

	pricing := rg.Group("/pricing")
	{
		pricing.POST("/convert", pricingHandler.Convert)
		pricing.POST("/vat", pricingHandler.CalculateVat)
		pricing.POST("/pack", pricingHandler.CalculatePackPricing)
	}
}

// SetupDeliveryRoutes sets up delivery cost related routes
func SetupDeliveryRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	deliveryHandler := handlers.NewDeliveryHandler(db, cfg)

	delivery := rg.Group("/delivery")
	{
		delivery.POST("/estimate", deliveryHandler.EstimateOrder)
		delivery.POST("/optimize", deliveryHandler.OptimizeOrder)
	}
}

// SetupCartRoutes sets up cart related routes. Carts work with session IDs
// or an organization ID header, no authentication involved.
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:id", cartHandler.UpdateLine)
		cart.DELETE("/items/:id", cartHandler.RemoveLine)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/merge", cartHandler.MergeSessionCart)
	}
}
