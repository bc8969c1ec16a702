package handlers

import (
	"context"
	"net/http"

	"github.com/almanac-labs/almanac-api/internal/api/dto"
	"github.com/almanac-labs/almanac-api/internal/domain/challenges"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChallengesHandler handles HTTP requests for challenge operations
type ChallengesHandler struct {
	service challenges.Service
}

// NewChallengesHandler creates a new ChallengesHandler instance
func NewChallengesHandler(service challenges.Service) *ChallengesHandler {
	return &ChallengesHandler{service: service}
}

// CreateChallenge handles POST /api/challenges
func (h *ChallengesHandler) CreateChallenge(c *gin.Context) {
	var req dto.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.service.CreateChallenge(c.Request.Context(), challenges.CreateChallengeInput{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		HabitIDs:    req.HabitIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": ChallengeToResponse(challenge)})
}

// GetChallenge handles GET /api/challenges/:id
func (h *ChallengesHandler) GetChallenge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge ID"})
		return
	}

	challenge, err := h.service.GetChallenge(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ChallengeToResponse(challenge)})
}

// ListChallenges handles GET /api/challenges
func (h *ChallengesHandler) ListChallenges(c *gin.Context) {
	list, err := h.service.ListChallenges(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ChallengesToResponse(list)})
}

// UpdateChallenge handles PUT /api/challenges/:id
func (h *ChallengesHandler) UpdateChallenge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge ID"})
		return
	}

	var req dto.UpdateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.service.UpdateChallenge(c.Request.Context(), id, challenges.UpdateChallengeInput{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		HabitIDs:    req.HabitIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ChallengeToResponse(challenge)})
}

// DeleteChallenge handles DELETE /api/challenges/:id
func (h *ChallengesHandler) DeleteChallenge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge ID"})
		return
	}

	if err := h.service.DeleteChallenge(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": id}})
}

// PauseChallenge handles POST /api/challenges/:id/pause
func (h *ChallengesHandler) PauseChallenge(c *gin.Context) {
	h.transition(c, h.service.PauseChallenge)
}

// ResumeChallenge handles POST /api/challenges/:id/resume
func (h *ChallengesHandler) ResumeChallenge(c *gin.Context) {
	h.transition(c, h.service.ResumeChallenge)
}

// CompleteChallenge handles POST /api/challenges/:id/complete
func (h *ChallengesHandler) CompleteChallenge(c *gin.Context) {
	h.transition(c, h.service.CompleteChallenge)
}

func (h *ChallengesHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*challenges.Challenge, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge ID"})
		return
	}

	challenge, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ChallengeToResponse(challenge)})
}

// GetProgress handles GET /api/challenges/:id/progress
func (h *ChallengesHandler) GetProgress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge ID"})
		return
	}

	rows, err := h.service.GetProgress(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ProgressToResponse(rows)})
}
