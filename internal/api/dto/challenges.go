package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateChallengeRequest represents the request structure for creating a challenge
type CreateChallengeRequest struct {
	Name        string      `json:"name" binding:"required,max=100"`
	Description string      `json:"description"`
	Duration    int         `json:"duration" binding:"required"`
	HabitIDs    []uuid.UUID `json:"habit_ids" binding:"required"`
}

// UpdateChallengeRequest represents the request structure for updating a
// challenge. A nil habit_ids leaves the habit set unchanged.
type UpdateChallengeRequest struct {
	Name        *string     `json:"name,omitempty" binding:"omitempty,max=100"`
	Description *string     `json:"description,omitempty"`
	Duration    *int        `json:"duration,omitempty"`
	HabitIDs    []uuid.UUID `json:"habit_ids,omitempty"`
}

// ChallengeResponse represents the response structure for challenge data
type ChallengeResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Duration      int             `json:"duration"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Status        string          `json:"status"`
	CompletedDays int             `json:"completed_days"`
	Progress      float64         `json:"progress"`
	Habits        []HabitResponse `json:"habits"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DailyProgressResponse represents one day of challenge progress
type DailyProgressResponse struct {
	Date            string  `json:"date"`
	CompletedHabits int     `json:"completed_habits"`
	TotalHabits     int     `json:"total_habits"`
	CompletionRate  float64 `json:"completion_rate"`
	DayCompleted    bool    `json:"day_completed"`
}
