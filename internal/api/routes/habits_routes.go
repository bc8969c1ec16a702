package routes

import (
	"github.com/almanac-labs/almanac-api/internal/api/handlers"
	"github.com/almanac-labs/almanac-api/internal/api/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

type HabitsRoutes struct {
	handler *handlers.HabitsHandler
}

func NewHabitsRoutes(handler *handlers.HabitsHandler) *HabitsRoutes {
	return &HabitsRoutes{handler: handler}
}

// RegisterRoutes registers all habit-related routes
func (h *HabitsRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	habits := router.Group("/api/habits")

	habits.GET("", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), h.handler.ListHabits)
	habits.POST("", cache.CacheInvalidate("habits:*", "statistics:*"), h.handler.CreateHabit)

	habits.GET("/:id", cache.CacheResponse(), h.handler.GetHabit)
	habits.PUT("/:id", cache.CacheInvalidate("habits:*", "statistics:*"), h.handler.UpdateHabit)
	habits.DELETE("/:id", cache.CacheInvalidate("habits:*", "challenges:*", "statistics:*"), h.handler.DeleteHabit)

	// A toggle moves challenge progress too, so both caches go.
	habits.POST("/:id/toggle", cache.CacheInvalidate("habits:*", "challenges:*", "statistics:*"), h.handler.ToggleCompletion)
	habits.GET("/:id/completions", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), h.handler.GetCompletions)
	habits.GET("/:id/streak", cache.CacheResponse(), h.handler.GetStreak)
}
