package http

import (
	"github.com/gin-gonic/gin"

	"github.com/evora/catalog/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.GET("/status", handler.Status)

		products := v1.Group("/products")
		{
			products.GET("/search", handler.SearchProducts)
			products.GET("/suggest", handler.SuggestProducts)
			products.GET("/facets", handler.Facets)
			products.GET("/:id", handler.GetProduct)
		}

		compare := v1.Group("/compare")
		{
			compare.GET("", handler.GetCompare)
			compare.POST("", handler.AddToCompare)
			compare.GET("/candidates", handler.CompareCandidates)
			compare.DELETE("/:id", handler.RemoveFromCompare)
		}
	}

	return router
}
