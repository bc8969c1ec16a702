package routes

import (
	"github.com/almanac-labs/almanac-api/internal/api/handlers"
	"github.com/almanac-labs/almanac-api/internal/api/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

type ChallengesRoutes struct {
	handler *handlers.ChallengesHandler
}

func NewChallengesRoutes(handler *handlers.ChallengesHandler) *ChallengesRoutes {
	return &ChallengesRoutes{handler: handler}
}

// RegisterRoutes registers all challenge-related routes
func (h *ChallengesRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	challenges := router.Group("/api/challenges")

	challenges.GET("", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), h.handler.ListChallenges)
	challenges.POST("", cache.CacheInvalidate("challenges:*", "statistics:*"), h.handler.CreateChallenge)

	challenges.GET("/:id", cache.CacheResponse(), h.handler.GetChallenge)
	challenges.PUT("/:id", cache.CacheInvalidate("challenges:*", "statistics:*"), h.handler.UpdateChallenge)
	challenges.DELETE("/:id", cache.CacheInvalidate("challenges:*", "statistics:*"), h.handler.DeleteChallenge)

	challenges.POST("/:id/pause", cache.CacheInvalidate("challenges:*", "statistics:*"), h.handler.PauseChallenge)
	challenges.POST("/:id/resume", cache.CacheInvalidate("challenges:*", "statistics:*"), h.handler.ResumeChallenge)
	challenges.POST("/:id/complete", cache.CacheInvalidate("challenges:*", "statistics:*"), h.handler.CompleteChallenge)

	challenges.GET("/:id/progress", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), h.handler.GetProgress)
}
