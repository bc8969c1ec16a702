package handlers

import (
	"net/http"

	"github.com/almanac-labs/almanac-api/internal/domain/statistics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatisticsHandler handles HTTP requests for statistics operations
type StatisticsHandler struct {
	service statistics.Service
}

// NewStatisticsHandler creates a new StatisticsHandler instance
func NewStatisticsHandler(service statistics.Service) *StatisticsHandler {
	return &StatisticsHandler{service: service}
}

// GetOverview handles GET /api/statistics
func (h *StatisticsHandler) GetOverview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": overview})
}

// GetHabitStatistics handles GET /api/statistics/habits/:id
func (h *StatisticsHandler) GetHabitStatistics(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	stats, err := h.service.HabitStatistics(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetChallengeStatistics handles GET /api/statistics/challenges/:id
func (h *StatisticsHandler) GetChallengeStatistics(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge ID"})
		return
	}

	stats, err := h.service.ChallengeStatistics(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
