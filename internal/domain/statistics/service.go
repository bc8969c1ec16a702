package statistics

import (
	"context"
	"math"
	"sort"

	"github.com/almanac-labs/almanac-api/internal/domain/challenges"
	"github.com/almanac-labs/almanac-api/internal/domain/habits"
	"github.com/almanac-labs/almanac-api/pkg/clock"
	"github.com/almanac-labs/almanac-api/pkg/dates"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	HabitStatistics(ctx context.Context, id uuid.UUID) (*HabitStatistics, error)
	ChallengeStatistics(ctx context.Context, id uuid.UUID) (*ChallengeStatistics, error)
}

type service struct {
	habitsRepo    habits.Repository
	habitsService habits.Service
	challengeRepo challenges.Repository
	progressRepo  challenges.ProgressRepository
	clock         clock.Clock
	logger        *zap.Logger
}

func NewService(
	habitsRepo habits.Repository,
	habitsService habits.Service,
	challengeRepo challenges.Repository,
	progressRepo challenges.ProgressRepository,
	clk clock.Clock,
	logger *zap.Logger,
) Service {
	return &service{
		habitsRepo:    habitsRepo,
		habitsService: habitsService,
		challengeRepo: challengeRepo,
		progressRepo:  progressRepo,
		clock:         clk,
		logger:        logger,
	}
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	today := dates.Midnight(s.clock.Now())

	totalHabits, err := s.habitsRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalCompletions, err := s.habitsRepo.CountCompleted(ctx)
	if err != nil {
		return nil, err
	}
	completedToday, err := s.habitsRepo.CountCompletedInRange(ctx, nil, today, today)
	if err != nil {
		return nil, err
	}
	maxStreak, err := s.habitsService.MaxStreak(ctx)
	if err != nil {
		return nil, err
	}
	weekly, err := s.weekly(ctx, nil)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := s.monthly(ctx, nil)
	if err != nil {
		return nil, err
	}
	byStatus, totalChallenges, err := s.challengeRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	counts := ChallengeCounts{
		Active:    byStatus[challenges.StatusActive],
		Paused:    byStatus[challenges.StatusPaused],
		Completed: byStatus[challenges.StatusCompleted],
		Failed:    byStatus[challenges.StatusFailed],
		Total:     totalChallenges,
	}

	achievements := buildAchievements(totalCompletions, maxStreak, totalHabits, counts.Completed)

	return &Overview{
		TotalHabits:          totalHabits,
		TotalCompletions:     totalCompletions,
		CompletedToday:       completedToday,
		MaxStreak:            maxStreak,
		Weekly:               weekly,
		Categories:           categories,
		Monthly:              monthly,
		Challenges:           counts,
		Achievements:         achievements,
		AchievementsUnlocked: unlockedCount(achievements),
	}, nil
}

func (s *service) HabitStatistics(ctx context.Context, id uuid.UUID) (*HabitStatistics, error) {
	today := dates.Midnight(s.clock.Now())

	habit, err := s.habitsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := []uuid.UUID{id}

	records, err := s.habitsRepo.ListCompletions(ctx, id, nil, nil)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, rec := range records {
		if rec.Completed {
			total++
		}
	}

	streak, err := s.habitsService.CalculateStreak(ctx, id)
	if err != nil {
		return nil, err
	}

	// Completion rate over the trailing 30-day window.
	windowStart := dates.AddDays(today, -29)
	inWindow, err := s.habitsRepo.CountCompletedInRange(ctx, set, windowStart, today)
	if err != nil {
		return nil, err
	}

	weekly, err := s.weekly(ctx, set)
	if err != nil {
		return nil, err
	}
	monthly, err := s.monthly(ctx, set)
	if err != nil {
		return nil, err
	}

	return &HabitStatistics{
		HabitID:          habit.ID,
		Name:             habit.Name,
		TotalCompletions: total,
		CurrentStreak:    streak,
		CompletionRate:   round1(float64(inWindow) / 30 * 100),
		Weekly:           weekly,
		Monthly:          monthly,
	}, nil
}

func (s *service) ChallengeStatistics(ctx context.Context, id uuid.UUID) (*ChallengeStatistics, error) {
	today := dates.Midnight(s.clock.Now())

	challenge, err := s.challengeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.progressRepo.ListByChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	daily := make([]DailyPoint, 0, len(rows))
	for _, row := range rows {
		daily = append(daily, DailyPoint{
			Date:            row.ProgressDate,
			CompletedHabits: row.CompletedHabits,
			TotalHabits:     row.TotalHabits,
			CompletionRate:  row.DailyCompletionRate,
			DayCompleted:    row.DayCompleted,
		})
	}

	// Per-habit tallies over the challenge window, cut off at today for
	// still-running challenges.
	lastDay := dates.AddDays(challenge.EndDate, -1)
	if today.Before(lastDay) {
		lastDay = today
	}
	perHabit := make([]HabitCompletionCount, 0, len(challenge.Habits))
	for _, h := range challenge.Habits {
		count, err := s.habitsRepo.CountCompletedInRange(ctx, []uuid.UUID{h.ID}, challenge.StartDate, lastDay)
		if err != nil {
			return nil, err
		}
		perHabit = append(perHabit, HabitCompletionCount{
			HabitID:     h.ID,
			Name:        h.Name,
			Completions: count,
		})
	}

	return &ChallengeStatistics{
		ChallengeID:   challenge.ID,
		Name:          challenge.Name,
		Status:        string(challenge.Status),
		Duration:      challenge.Duration,
		CompletedDays: challenge.CompletedDays,
		Progress:      challenge.Progress,
		Daily:         daily,
		PerHabit:      perHabit,
	}, nil
}

// weekly buckets completions from the trailing seven days by weekday. A nil
// habit set means every habit.
func (s *service) weekly(ctx context.Context, habitIDs []uuid.UUID) (WeeklyProgress, error) {
	var out WeeklyProgress

	today := dates.Midnight(s.clock.Now())
	start := dates.AddDays(today, -6)

	records, err := s.habitsRepo.ListCompletedInRange(ctx, habitIDs, start, today)
	if err != nil {
		return out, err
	}
	for _, rec := range records {
		out[int(rec.CompletionDate.Weekday())]++
	}
	return out, nil
}

// monthly returns completion totals for the six months ending with the
// current one, oldest first.
func (s *service) monthly(ctx context.Context, habitIDs []uuid.UUID) ([]MonthlyCount, error) {
	today := dates.Midnight(s.clock.Now())
	currentMonth := dates.StartOfMonth(today)

	out := make([]MonthlyCount, 0, 6)
	for i := 5; i >= 0; i-- {
		monthStart := dates.AddMonths(currentMonth, -i)
		monthEnd := dates.AddDays(dates.AddMonths(monthStart, 1), -1)

		count, err := s.habitsRepo.CountCompletedInRange(ctx, habitIDs, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		out = append(out, MonthlyCount{
			Month:       monthStart.Format("2006-01"),
			Completions: int(count),
		})
	}
	return out, nil
}

func (s *service) categories(ctx context.Context) ([]CategoryCount, error) {
	all, _, err := s.habitsRepo.FindAll(ctx, habits.HabitFilter{})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]int)
	for _, h := range all {
		byCategory[h.Category]++
	}

	out := make([]CategoryCount, 0, len(byCategory))
	for category, count := range byCategory {
		out = append(out, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func buildAchievements(totalCompletions int64, maxStreak int, totalHabits, completedChallenges int64) []Achievement {
	return []Achievement{
		{Code: "first_step", Name: "First Step", Unlocked: totalHabits >= 1},
		{Code: "week_streak", Name: "One Week Streak", Unlocked: maxStreak >= 7},
		{Code: "month_streak", Name: "One Month Streak", Unlocked: maxStreak >= 30},
		{Code: "collector", Name: "Habit Collector", Unlocked: totalHabits >= 10},
		{Code: "challenger", Name: "Challenge Conqueror", Unlocked: completedChallenges >= 1},
		{Code: "centurion", Name: "Centurion", Unlocked: totalCompletions >= 100},
	}
}

func unlockedCount(list []Achievement) int {
	n := 0
	for _, a := range list {
		if a.Unlocked {
			n++
		}
	}
	return n
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
