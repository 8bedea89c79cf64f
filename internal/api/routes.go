package api

import (
	"github.com/JustJay7/court-records-ingest/internal/cache"
	"github.com/JustJay7/court-records-ingest/internal/config"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, cache cache.Cache, logger *logger.Logger, cfg *config.Config) {
	h := NewHandlers(db, cache, logger, cfg)

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		api.GET("/cases", h.ListCases)
		api.GET("/cases/:id", h.GetCase)
		api.GET("/cases/:id/actions", h.GetCaseActions)
		api.GET("/cases/:id/fetch", h.LatestFetch)

		api.GET("/markers", h.Markers)
		api.GET("/fetches", h.RecentFetches)
		api.GET("/cache/stats", h.CacheStats)
	}
}
