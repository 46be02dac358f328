package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nutrilog/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		foods := v1.Group("/foods")
		{
			foods.GET("/search", handler.SearchFoods)
			foods.POST("", handler.CreateCustomFood)
		}

		v1.POST("/meals", handler.LogMeal)
	}

	return router
}
