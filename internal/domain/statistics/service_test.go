package statistics

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/almanac-labs/almanac-api/internal/domain/challenges"
	"github.com/almanac-labs/almanac-api/internal/domain/habits"
	"github.com/almanac-labs/almanac-api/pkg/clock"
	"github.com/almanac-labs/almanac-api/pkg/dates"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeHabitsRepo struct {
	habits      map[uuid.UUID]habits.Habit
	order       []uuid.UUID
	completions map[uuid.UUID]map[time.Time]bool
}

func newFakeHabitsRepo() *fakeHabitsRepo {
	return &fakeHabitsRepo{
		habits:      make(map[uuid.UUID]habits.Habit),
		completions: make(map[uuid.UUID]map[time.Time]bool),
	}
}

func (r *fakeHabitsRepo) addHabit(name, category string, createdAt time.Time) uuid.UUID {
	h := habits.Habit{ID: uuid.New(), Name: name, Category: category, CreatedAt: createdAt}
	r.habits[h.ID] = h
	r.order = append(r.order, h.ID)
	return h.ID
}

func (r *fakeHabitsRepo) markCompleted(habitID uuid.UUID, day time.Time) {
	day = dates.Midnight(day)
	if _, ok := r.completions[habitID]; !ok {
		r.completions[habitID] = make(map[time.Time]bool)
	}
	r.completions[habitID][day] = true
}

func (r *fakeHabitsRepo) Create(context.Context, *habits.Habit) error { return nil }

func (r *fakeHabitsRepo) FindByID(_ context.Context, id uuid.UUID) (*habits.Habit, error) {
	h, ok := r.habits[id]
	if !ok {
		return nil, habits.ErrHabitNotFound
	}
	return &h, nil
}

func (r *fakeHabitsRepo) FindAll(_ context.Context, _ habits.HabitFilter) ([]habits.Habit, int64, error) {
	out := make([]habits.Habit, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.habits[id])
	}
	return out, int64(len(out)), nil
}

func (r *fakeHabitsRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]habits.Habit, error) {
	var out []habits.Habit
	for _, id := range ids {
		if h, ok := r.habits[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHabitsRepo) Update(context.Context, *habits.Habit) error { return nil }
func (r *fakeHabitsRepo) Delete(context.Context, uuid.UUID) error     { return nil }

func (r *fakeHabitsRepo) Count(context.Context) (int64, error) {
	return int64(len(r.habits)), nil
}

func (r *fakeHabitsRepo) UpsertCompletion(context.Context, uuid.UUID, time.Time, bool) (*habits.CompletionRecord, error) {
	return nil, nil
}

func (r *fakeHabitsRepo) IsCompleted(_ context.Context, habitID uuid.UUID, date time.Time) (bool, error) {
	return r.completions[habitID][dates.Midnight(date)], nil
}

func (r *fakeHabitsRepo) inRange(habitIDs []uuid.UUID, start, end time.Time) []habits.CompletionRecord {
	ids := habitIDs
	if ids == nil {
		ids = r.order
	}
	start, end = dates.Midnight(start), dates.Midnight(end)

	var out []habits.CompletionRecord
	for _, id := range ids {
		for day := range r.completions[id] {
			if day.Before(start) || day.After(end) {
				continue
			}
			out = append(out, habits.CompletionRecord{
				ID:             uuid.New(),
				HabitID:        id,
				CompletionDate: day,
				Completed:      true,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletionDate.Before(out[j].CompletionDate) })
	return out
}

func (r *fakeHabitsRepo) CountCompletedInRange(_ context.Context, habitIDs []uuid.UUID, start, end time.Time) (int64, error) {
	return int64(len(r.inRange(habitIDs, start, end))), nil
}

func (r *fakeHabitsRepo) ListCompletedInRange(_ context.Context, habitIDs []uuid.UUID, start, end time.Time) ([]habits.CompletionRecord, error) {
	return r.inRange(habitIDs, start, end), nil
}

func (r *fakeHabitsRepo) ListCompletions(_ context.Context, habitID uuid.UUID, _, _ *time.Time) ([]habits.CompletionRecord, error) {
	var out []habits.CompletionRecord
	for day := range r.completions[habitID] {
		out = append(out, habits.CompletionRecord{
			ID:             uuid.New(),
			HabitID:        habitID,
			CompletionDate: day,
			Completed:      true,
		})
	}
	return out, nil
}

func (r *fakeHabitsRepo) CountCompleted(context.Context) (int64, error) {
	var n int64
	for _, days := range r.completions {
		n += int64(len(days))
	}
	return n, nil
}

type fakeChallengeRepo struct {
	items map[uuid.UUID]*challenges.Challenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{items: make(map[uuid.UUID]*challenges.Challenge)}
}

func (r *fakeChallengeRepo) Create(_ context.Context, c *challenges.Challenge) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeChallengeRepo) FindByID(_ context.Context, id uuid.UUID) (*challenges.Challenge, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, challenges.ErrChallengeNotFound
	}
	return c, nil
}

func (r *fakeChallengeRepo) FindAll(context.Context) ([]challenges.Challenge, error) {
	return nil, nil
}

func (r *fakeChallengeRepo) ListByStatus(context.Context, challenges.Status) ([]challenges.Challenge, error) {
	return nil, nil
}

func (r *fakeChallengeRepo) Save(_ context.Context, c *challenges.Challenge) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeChallengeRepo) ReplaceHabits(context.Context, *challenges.Challenge, []uuid.UUID) error {
	return nil
}

func (r *fakeChallengeRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (r *fakeChallengeRepo) CountByStatus(context.Context) (map[challenges.Status]int64, int64, error) {
	counts := make(map[challenges.Status]int64)
	var total int64
	for _, c := range r.items {
		counts[c.Status]++
		total++
	}
	return counts, total, nil
}

type fakeProgressRepo struct {
	rows map[uuid.UUID][]challenges.DailyProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[uuid.UUID][]challenges.DailyProgress)}
}

func (r *fakeProgressRepo) GetOrCreate(context.Context, uuid.UUID, time.Time) (*challenges.DailyProgress, error) {
	return nil, nil
}

func (r *fakeProgressRepo) Save(_ context.Context, row *challenges.DailyProgress) error {
	r.rows[row.ChallengeID] = append(r.rows[row.ChallengeID], *row)
	return nil
}

func (r *fakeProgressRepo) ListByChallenge(_ context.Context, challengeID uuid.UUID) ([]challenges.DailyProgress, error) {
	out := append([]challenges.DailyProgress(nil), r.rows[challengeID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ProgressDate.Before(out[j].ProgressDate) })
	return out, nil
}

func (r *fakeProgressRepo) CountDayCompleted(_ context.Context, challengeID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range r.rows[challengeID] {
		if row.DayCompleted {
			n++
		}
	}
	return n, nil
}

// Saturday, so the weekly window runs Sunday through Saturday.
var statsNow = time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

var habitEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newStatsService(habitsRepo *fakeHabitsRepo, challengeRepo *fakeChallengeRepo, progressRepo *fakeProgressRepo) Service {
	clk := clock.NewFixed(statsNow)
	habitsService := habits.NewService(habitsRepo, clk, zap.NewNop())
	return NewService(habitsRepo, habitsService, challengeRepo, progressRepo, clk, zap.NewNop())
}

func TestOverviewWeeklyProgress(t *testing.T) {
	ctx := context.Background()
	habitsRepo := newFakeHabitsRepo()
	id := habitsRepo.addHabit("Read", "learning", habitEpoch)

	// Sunday the 3rd and Wednesday the 6th.
	habitsRepo.markCompleted(id, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	habitsRepo.markCompleted(id, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))
	// Outside the window, must not appear.
	habitsRepo.markCompleted(id, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))

	svc := newStatsService(habitsRepo, newFakeChallengeRepo(), newFakeProgressRepo())

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, WeeklyProgress{1, 0, 0, 1, 0, 0, 0}, overview.Weekly)
}

func TestOverviewMonthlySeries(t *testing.T) {
	ctx := context.Background()
	habitsRepo := newFakeHabitsRepo()
	id := habitsRepo.addHabit("Read", "learning", habitEpoch)

	habitsRepo.markCompleted(id, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	habitsRepo.markCompleted(id, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	habitsRepo.markCompleted(id, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	habitsRepo.markCompleted(id, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	svc := newStatsService(habitsRepo, newFakeChallengeRepo(), newFakeProgressRepo())

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)

	require.Len(t, overview.Monthly, 6)
	assert.Equal(t, []MonthlyCount{
		{Month: "2023-10", Completions: 0},
		{Month: "2023-11", Completions: 0},
		{Month: "2023-12", Completions: 0},
		{Month: "2024-01", Completions: 2},
		{Month: "2024-02", Completions: 1},
		{Month: "2024-03", Completions: 1},
	}, overview.Monthly)
}

func TestOverviewTotalsAndCategories(t *testing.T) {
	ctx := context.Background()
	habitsRepo := newFakeHabitsRepo()
	read := habitsRepo.addHabit("Read", "learning", habitEpoch)
	habitsRepo.addHabit("Review notes", "learning", habitEpoch)
	habitsRepo.addHabit("Run", "fitness", habitEpoch)

	today := dates.Midnight(statsNow)
	habitsRepo.markCompleted(read, today)
	habitsRepo.markCompleted(read, dates.AddDays(today, -1))

	challengeRepo := newFakeChallengeRepo()
	require.NoError(t, challengeRepo.Create(ctx, &challenges.Challenge{ID: uuid.New(), Status: challenges.StatusActive}))
	require.NoError(t, challengeRepo.Create(ctx, &challenges.Challenge{ID: uuid.New(), Status: challenges.StatusCompleted}))
	require.NoError(t, challengeRepo.Create(ctx, &challenges.Challenge{ID: uuid.New(), Status: challenges.StatusFailed}))

	svc := newStatsService(habitsRepo, challengeRepo, newFakeProgressRepo())

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), overview.TotalHabits)
	assert.Equal(t, int64(2), overview.TotalCompletions)
	assert.Equal(t, int64(1), overview.CompletedToday)
	assert.Equal(t, 2, overview.MaxStreak)

	assert.Equal(t, []CategoryCount{
		{Category: "learning", Count: 2},
		{Category: "fitness", Count: 1},
	}, overview.Categories)

	assert.Equal(t, ChallengeCounts{Active: 1, Completed: 1, Failed: 1, Total: 3}, overview.Challenges)

	// first_step (a habit exists) and challenger (a completed challenge)
	assert.Equal(t, 2, overview.AchievementsUnlocked)
}

func TestBuildAchievements(t *testing.T) {
	unlockedCodes := func(list []Achievement) []string {
		var out []string
		for _, a := range list {
			if a.Unlocked {
				out = append(out, a.Code)
			}
		}
		return out
	}

	cases := []struct {
		name                string
		completions         int64
		maxStreak           int
		habits              int64
		completedChallenges int64
		want                []string
	}{
		{"nothing yet", 0, 0, 0, 0, nil},
		{"first habit, no completions", 0, 0, 1, 0, []string{"first_step"}},
		{"first completion", 1, 1, 1, 0, []string{"first_step"}},
		{"week streak", 20, 7, 2, 0, []string{"first_step", "week_streak"}},
		{"everything", 150, 45, 12, 3, []string{"first_step", "week_streak", "month_streak", "collector", "challenger", "centurion"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := buildAchievements(tc.completions, tc.maxStreak, tc.habits, tc.completedChallenges)
			require.Len(t, got, 6)
			assert.Equal(t, tc.want, unlockedCodes(got))
			assert.Equal(t, len(tc.want), unlockedCount(got))
		})
	}
}

func TestHabitStatistics(t *testing.T) {
	ctx := context.Background()
	habitsRepo := newFakeHabitsRepo()
	id := habitsRepo.addHabit("Read", "learning", habitEpoch)

	today := dates.Midnight(statsNow)
	for i := 0; i < 3; i++ {
		habitsRepo.markCompleted(id, dates.AddDays(today, -i))
	}

	svc := newStatsService(habitsRepo, newFakeChallengeRepo(), newFakeProgressRepo())

	stats, err := svc.HabitStatistics(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, stats.HabitID)
	assert.Equal(t, "Read", stats.Name)
	assert.Equal(t, int64(3), stats.TotalCompletions)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.InDelta(t, 10.0, stats.CompletionRate, 0.001)
}

func TestHabitStatisticsUnknownHabit(t *testing.T) {
	svc := newStatsService(newFakeHabitsRepo(), newFakeChallengeRepo(), newFakeProgressRepo())

	_, err := svc.HabitStatistics(context.Background(), uuid.New())
	assert.ErrorIs(t, err, habits.ErrHabitNotFound)
}

func TestChallengeStatistics(t *testing.T) {
	ctx := context.Background()
	habitsRepo := newFakeHabitsRepo()
	read := habitsRepo.addHabit("Read", "learning", habitEpoch)
	run := habitsRepo.addHabit("Run", "fitness", habitEpoch)

	today := dates.Midnight(statsNow)
	start := dates.AddDays(today, -4)

	habitsRepo.markCompleted(read, start)
	habitsRepo.markCompleted(read, dates.AddDays(start, 1))
	habitsRepo.markCompleted(run, start)
	// Before the challenge window, must not be counted.
	habitsRepo.markCompleted(run, dates.AddDays(start, -1))

	challengeRepo := newFakeChallengeRepo()
	progressRepo := newFakeProgressRepo()

	members, err := habitsRepo.FindByIDs(ctx, []uuid.UUID{read, run})
	require.NoError(t, err)

	challenge := &challenges.Challenge{
		ID:            uuid.New(),
		Name:          "spring",
		Duration:      10,
		StartDate:     start,
		EndDate:       dates.AddDays(start, 10),
		Status:        challenges.StatusActive,
		CompletedDays: 1,
		Progress:      10.0,
		Habits:        members,
	}
	require.NoError(t, challengeRepo.Create(ctx, challenge))

	require.NoError(t, progressRepo.Save(ctx, &challenges.DailyProgress{
		ID:                  uuid.New(),
		ChallengeID:         challenge.ID,
		ProgressDate:        start,
		CompletedHabits:     2,
		TotalHabits:         2,
		DailyCompletionRate: 100,
		DayCompleted:        true,
	}))
	require.NoError(t, progressRepo.Save(ctx, &challenges.DailyProgress{
		ID:                  uuid.New(),
		ChallengeID:         challenge.ID,
		ProgressDate:        dates.AddDays(start, 1),
		CompletedHabits:     1,
		TotalHabits:         2,
		DailyCompletionRate: 50,
	}))

	svc := newStatsService(habitsRepo, challengeRepo, progressRepo)

	stats, err := svc.ChallengeStatistics(ctx, challenge.ID)
	require.NoError(t, err)

	assert.Equal(t, "spring", stats.Name)
	assert.Equal(t, "active", stats.Status)
	assert.Equal(t, 1, stats.CompletedDays)
	assert.InDelta(t, 10.0, stats.Progress, 0.001)

	require.Len(t, stats.Daily, 2)
	assert.True(t, stats.Daily[0].DayCompleted)
	assert.Equal(t, 1, stats.Daily[1].CompletedHabits)

	require.Len(t, stats.PerHabit, 2)
	byName := map[string]int64{}
	for _, p := range stats.PerHabit {
		byName[p.Name] = p.Completions
	}
	assert.Equal(t, int64(2), byName["Read"])
	assert.Equal(t, int64(1), byName["Run"])
}
