package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/almanac-labs/almanac-api/internal/api/dto"
	"github.com/almanac-labs/almanac-api/internal/domain/habits"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HabitsHandler handles HTTP requests for habits operations
type HabitsHandler struct {
	service habits.Service
}

// NewHabitsHandler creates a new HabitsHandler instance
func NewHabitsHandler(service habits.Service) *HabitsHandler {
	return &HabitsHandler{service: service}
}

// CreateHabit handles POST /api/habits
func (h *HabitsHandler) CreateHabit(c *gin.Context) {
	var req dto.CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := habits.CreateHabitInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	}

	habit, err := h.service.CreateHabit(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": HabitToResponse(habit)})
}

// GetHabit handles GET /api/habits/:id
func (h *HabitsHandler) GetHabit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	habit, err := h.service.GetHabit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": HabitToResponse(habit)})
}

// ListHabits handles GET /api/habits
func (h *HabitsHandler) ListHabits(c *gin.Context) {
	filter := habits.HabitFilter{}

	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if name := c.Query("name"); name != "" {
		filter.Name = &name
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "0")); err == nil && page > 0 {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "0")); err == nil && pageSize > 0 {
		filter.PageSize = pageSize
	}

	list, total, err := h.service.ListHabits(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.HabitListResponse{
		Items:    HabitsToResponse(list),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}})
}

// UpdateHabit handles PUT /api/habits/:id
func (h *HabitsHandler) UpdateHabit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	var req dto.UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.service.UpdateHabit(c.Request.Context(), id, habits.UpdateHabitInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": HabitToResponse(habit)})
}

// DeleteHabit handles DELETE /api/habits/:id
func (h *HabitsHandler) DeleteHabit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	if err := h.service.DeleteHabit(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": id}})
}

// ToggleCompletion handles POST /api/habits/:id/toggle
func (h *HabitsHandler) ToggleCompletion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	var req dto.ToggleCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var date *time.Time
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = &parsed
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	record, err := h.service.ToggleCompletion(c.Request.Context(), id, date, completed)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": CompletionToResponse(record)})
}

// GetCompletions handles GET /api/habits/:id/completions
func (h *HabitsHandler) GetCompletions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	var start, end *time.Time
	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD"})
			return
		}
		start = &parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse(dateLayout, e)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected YYYY-MM-DD"})
			return
		}
		end = &parsed
	}

	records, err := h.service.GetCompletions(c.Request.Context(), id, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": CompletionsToResponse(records)})
}

// GetStreak handles GET /api/habits/:id/streak
func (h *HabitsHandler) GetStreak(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	streak, err := h.service.CalculateStreak(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.StreakResponse{HabitID: id, Streak: streak}})
}
