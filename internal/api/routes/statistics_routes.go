package routes

import (
	"github.com/almanac-labs/almanac-api/internal/api/handlers"
	"github.com/almanac-labs/almanac-api/internal/api/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

type StatisticsRoutes struct {
	handler *handlers.StatisticsHandler
}

func NewStatisticsRoutes(handler *handlers.StatisticsHandler) *StatisticsRoutes {
	return &StatisticsRoutes{handler: handler}
}

// RegisterRoutes registers all statistics routes
func (h *StatisticsRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	statistics := router.Group("/api/statistics")

	statistics.GET("", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), h.handler.GetOverview)
	statistics.GET("/habits/:id", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), h.handler.GetHabitStatistics)
	statistics.GET("/challenges/:id", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), h.handler.GetChallengeStatistics)
}
