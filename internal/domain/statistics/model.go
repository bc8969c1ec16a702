package statistics

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyProgress counts completions per weekday over the trailing seven
// days. Index 0 is Sunday, matching time.Weekday.
type WeeklyProgress [7]int

// CategoryCount is the number of habits filed under one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MonthlyCount is the completion total for one calendar month.
type MonthlyCount struct {
	Month       string `json:"month"` // "2006-01"
	Completions int    `json:"completions"`
}

// ChallengeCounts breaks the challenge population down by status.
type ChallengeCounts struct {
	Active    int64 `json:"active"`
	Paused    int64 `json:"paused"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Total     int64 `json:"total"`
}

// Achievement is one unlockable milestone. Thresholds are evaluated
// independently on every overview request; nothing is persisted.
type Achievement struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Unlocked bool   `json:"unlocked"`
}

// Overview is the aggregate snapshot across all habits and challenges.
type Overview struct {
	TotalHabits          int64           `json:"total_habits"`
	TotalCompletions     int64           `json:"total_completions"`
	CompletedToday       int64           `json:"completed_today"`
	MaxStreak            int             `json:"max_streak"`
	Weekly               WeeklyProgress  `json:"weekly_progress"`
	Categories           []CategoryCount `json:"categories"`
	Monthly              []MonthlyCount  `json:"monthly"`
	Challenges           ChallengeCounts `json:"challenges"`
	Achievements         []Achievement   `json:"achievements"`
	AchievementsUnlocked int             `json:"achievements_unlocked"`
}

// HabitStatistics is the drill-down view for a single habit.
type HabitStatistics struct {
	HabitID          uuid.UUID      `json:"habit_id"`
	Name             string         `json:"name"`
	TotalCompletions int64          `json:"total_completions"`
	CurrentStreak    int            `json:"current_streak"`
	CompletionRate   float64        `json:"completion_rate"` // trailing 30 days, percent
	Weekly           WeeklyProgress `json:"weekly_progress"`
	Monthly          []MonthlyCount `json:"monthly"`
}

// HabitCompletionCount is a per-habit completion tally inside a challenge
// window.
type HabitCompletionCount struct {
	HabitID     uuid.UUID `json:"habit_id"`
	Name        string    `json:"name"`
	Completions int64     `json:"completions"`
}

// DailyPoint is one day of a challenge's progress series.
type DailyPoint struct {
	Date            time.Time `json:"date"`
	CompletedHabits int       `json:"completed_habits"`
	TotalHabits     int       `json:"total_habits"`
	CompletionRate  float64   `json:"completion_rate"`
	DayCompleted    bool      `json:"day_completed"`
}

// ChallengeStatistics is the drill-down view for a single challenge.
type ChallengeStatistics struct {
	ChallengeID   uuid.UUID              `json:"challenge_id"`
	Name          string                 `json:"name"`
	Status        string                 `json:"status"`
	Duration      int                    `json:"duration"`
	CompletedDays int                    `json:"completed_days"`
	Progress      float64                `json:"progress"`
	Daily         []DailyPoint           `json:"daily"`
	PerHabit      []HabitCompletionCount `json:"per_habit"`
}
