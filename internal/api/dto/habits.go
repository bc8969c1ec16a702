package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateHabitRequest represents the request structure for creating a habit
type CreateHabitRequest struct {
	Name        string `json:"name" binding:"required,max=80"`
	Category    string `json:"category" binding:"required,max=40"`
	Description string `json:"description"`
}

// UpdateHabitRequest represents the request structure for updating a habit
type UpdateHabitRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=80"`
	Category    *string `json:"category,omitempty" binding:"omitempty,max=40"`
	Description *string `json:"description,omitempty"`
}

// ToggleCompletionRequest marks or unmarks a habit for a day. Date is
// "2006-01-02"; empty means today. Completed defaults to true.
type ToggleCompletionRequest struct {
	Date      string `json:"date,omitempty"`
	Completed *bool  `json:"completed,omitempty"`
}

// HabitResponse represents the response structure for habit data
type HabitResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompletionResponse represents one completion ledger row
type CompletionResponse struct {
	ID        uuid.UUID `json:"id"`
	HabitID   uuid.UUID `json:"habit_id"`
	Date      string    `json:"date"`
	Completed bool      `json:"completed"`
}

// HabitListResponse wraps a paginated habit listing
type HabitListResponse struct {
	Items    []HabitResponse `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// StreakResponse carries a habit's current consecutive-day run
type StreakResponse struct {
	HabitID uuid.UUID `json:"habit_id"`
	Streak  int       `json:"streak"`
}
