package handlers

import (
	"github.com/almanac-labs/almanac-api/internal/api/dto"
	"github.com/almanac-labs/almanac-api/internal/domain/challenges"
	"github.com/almanac-labs/almanac-api/internal/domain/habits"
)

const dateLayout = "2006-01-02"

// HabitToResponse converts a habit domain model to its response DTO
func HabitToResponse(h *habits.Habit) dto.HabitResponse {
	return dto.HabitResponse{
		ID:          h.ID,
		Name:        h.Name,
		Category:    h.Category,
		Description: h.Description,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

// HabitsToResponse converts a slice of habits
func HabitsToResponse(list []habits.Habit) []dto.HabitResponse {
	out := make([]dto.HabitResponse, 0, len(list))
	for i := range list {
		out = append(out, HabitToResponse(&list[i]))
	}
	return out
}

// CompletionToResponse converts a ledger row to its response DTO
func CompletionToResponse(r *habits.CompletionRecord) dto.CompletionResponse {
	return dto.CompletionResponse{
		ID:        r.ID,
		HabitID:   r.HabitID,
		Date:      r.CompletionDate.Format(dateLayout),
		Completed: r.Completed,
	}
}

// CompletionsToResponse converts a slice of ledger rows
func CompletionsToResponse(list []habits.CompletionRecord) []dto.CompletionResponse {
	out := make([]dto.CompletionResponse, 0, len(list))
	for i := range list {
		out = append(out, CompletionToResponse(&list[i]))
	}
	return out
}

// ChallengeToResponse converts a challenge domain model to its response DTO
func ChallengeToResponse(c *challenges.Challenge) dto.ChallengeResponse {
	return dto.ChallengeResponse{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Duration:      c.Duration,
		StartDate:     c.StartDate.Format(dateLayout),
		EndDate:       c.EndDate.Format(dateLayout),
		Status:        string(c.Status),
		CompletedDays: c.CompletedDays,
		Progress:      c.Progress,
		Habits:        HabitsToResponse(c.Habits),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ChallengesToResponse converts a slice of challenges
func ChallengesToResponse(list []challenges.Challenge) []dto.ChallengeResponse {
	out := make([]dto.ChallengeResponse, 0, len(list))
	for i := range list {
		out = append(out, ChallengeToResponse(&list[i]))
	}
	return out
}

// ProgressToResponse converts daily progress rows
func ProgressToResponse(rows []challenges.DailyProgress) []dto.DailyProgressResponse {
	out := make([]dto.DailyProgressResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.DailyProgressResponse{
			Date:            row.ProgressDate.Format(dateLayout),
			CompletedHabits: row.CompletedHabits,
			TotalHabits:     row.TotalHabits,
			CompletionRate:  row.DailyCompletionRate,
			DayCompleted:    row.DayCompleted,
		})
	}
	return out
}
