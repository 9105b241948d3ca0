package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nestlings/planner/config"
	"github.com/nestlings/planner/internal/platform/logger"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, verifier TokenVerifier, baseLog *logger.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(baseLog))
	router.Use(LoggerMiddleware(baseLog))
	router.Use(MetricsMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := RequireAuth(verifier)
	optionalAuth := OptionalAuth(verifier)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.POST("/ingest", requireAuth, handler.IngestProducts)
			products.GET("/:id", handler.GetProduct)
			products.DELETE("/:id", requireAuth, handler.DeleteProduct)
			products.POST("/:id/reviews", requireAuth, handler.AddReview)
			products.POST("/:id/interactions", requireAuth, handler.RecordInteraction)
		}

		recommendations := v1.Group("/recommendations")
		{
			recommendations.POST("", optionalAuth, handler.Recommend)
			recommendations.POST("/curated", optionalAuth, handler.CurateBundle)
			recommendations.GET("/history", requireAuth, handler.RecommendationHistory)
		}

		v1.GET("/milestones", handler.ListMilestones)
	}

	return router
}
