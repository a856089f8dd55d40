package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/nordicgem/diamond-indexer/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Catalog endpoints (public read access)
		v1.GET("/diamonds", handler.SearchDiamonds)
		v1.GET("/diamonds/:type", handler.ListDiamondsByType)

		// Refresh trigger (requires authentication)
		v1.POST("/imports/:type", middleware.Auth(authCfg), handler.TriggerImport)

		// Import job inspection (public read access)
		v1.GET("/imports/jobs", handler.ListImportJobs)
		v1.GET("/imports/jobs/:id", handler.GetImportJob)

		// Markup ladder admin (reads open, writes require authentication)
		v1.GET("/markup-intervals", handler.GetMarkupIntervals)
		v1.PUT("/markup-intervals", middleware.Auth(authCfg), handler.ReplaceMarkupIntervals)
	}
}
