package handlers

import (
	"errors"
	"net/http"

	"github.com/almanac-labs/almanac-api/internal/domain/challenges"
	"github.com/almanac-labs/almanac-api/internal/domain/habits"
	"github.com/gin-gonic/gin"
)

// respondError translates domain sentinel errors into HTTP status codes.
func respondError(c *gin.Context, err error) {
	var unknownHabits *challenges.UnknownHabitsError
	if errors.As(err, &unknownHabits) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             unknownHabits.Error(),
			"unknown_habit_ids": unknownHabits.HabitIDs,
		})
		return
	}

	switch {
	case errors.Is(err, habits.ErrHabitNotFound),
		errors.Is(err, challenges.ErrChallengeNotFound),
		errors.Is(err, challenges.ErrProgressNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, habits.ErrInvalidInput),
		errors.Is(err, challenges.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, challenges.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
