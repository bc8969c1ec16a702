package habits

import (
	"context"
	"time"

	"github.com/almanac-labs/almanac-api/pkg/clock"
	"github.com/almanac-labs/almanac-api/pkg/dates"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompletionHook is invoked after a completion toggle is persisted, with the
// normalized calendar day that changed. The challenge aggregator registers
// itself here at wiring time; habits must not import challenges.
type CompletionHook func(ctx context.Context, habitID uuid.UUID, date time.Time)

type Service interface {
	CreateHabit(ctx context.Context, input CreateHabitInput) (*Habit, error)
	GetHabit(ctx context.Context, id uuid.UUID) (*Habit, error)
	ListHabits(ctx context.Context, filter HabitFilter) ([]Habit, int64, error)
	UpdateHabit(ctx context.Context, id uuid.UUID, input UpdateHabitInput) (*Habit, error)
	DeleteHabit(ctx context.Context, id uuid.UUID) error

	// ToggleCompletion upserts the ledger row for (habit, date) and notifies
	// the completion hook. A nil date means "today".
	ToggleCompletion(ctx context.Context, id uuid.UUID, date *time.Time, completed bool) (*CompletionRecord, error)
	GetCompletions(ctx context.Context, id uuid.UUID, start, end *time.Time) ([]CompletionRecord, error)

	// CalculateStreak returns the habit's current consecutive-day run as of
	// today. A day without a completion yet today does not break the run.
	CalculateStreak(ctx context.Context, id uuid.UUID) (int, error)
	MaxStreak(ctx context.Context) (int, error)

	// SetCompletionHook wires the post-toggle callback. Must be called
	// before the server starts accepting requests.
	SetCompletionHook(hook CompletionHook)
}

type service struct {
	repo     Repository
	clock    clock.Clock
	logger   *zap.Logger
	onToggle CompletionHook
}

func NewService(repo Repository, clk clock.Clock, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

func (s *service) SetCompletionHook(hook CompletionHook) {
	s.onToggle = hook
}

func (s *service) CreateHabit(ctx context.Context, input CreateHabitInput) (*Habit, error) {
	if input.Name == "" || input.Category == "" {
		return nil, ErrInvalidInput
	}

	habit := &Habit{
		ID:          uuid.New(),
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	s.logger.Info("habit created",
		zap.String("habit_id", habit.ID.String()),
		zap.String("name", habit.Name),
		zap.String("category", habit.Category))

	return habit, nil
}

func (s *service) GetHabit(ctx context.Context, id uuid.UUID) (*Habit, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListHabits(ctx context.Context, filter HabitFilter) ([]Habit, int64, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *service) UpdateHabit(ctx context.Context, id uuid.UUID, input UpdateHabitInput) (*Habit, error) {
	habit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if input.Name != nil && habit.Name != *input.Name {
		habit.Name = *input.Name
		changed = true
	}
	if input.Category != nil && habit.Category != *input.Category {
		habit.Category = *input.Category
		changed = true
	}
	if input.Description != nil && habit.Description != *input.Description {
		habit.Description = *input.Description
		changed = true
	}

	if !changed {
		return habit, nil
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *service) DeleteHabit(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) ToggleCompletion(ctx context.Context, id uuid.UUID, date *time.Time, completed bool) (*CompletionRecord, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	day := dates.Midnight(s.clock.Now())
	if date != nil {
		day = dates.Midnight(*date)
	}

	record, err := s.repo.UpsertCompletion(ctx, id, day, completed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("completion toggled",
		zap.String("habit_id", id.String()),
		zap.Time("date", day),
		zap.Bool("completed", completed))

	if s.onToggle != nil {
		s.onToggle(ctx, id, day)
	}

	return record, nil
}

func (s *service) GetCompletions(ctx context.Context, id uuid.UUID, start, end *time.Time) ([]CompletionRecord, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListCompletions(ctx, id, start, end)
}

func (s *service) CalculateStreak(ctx context.Context, id uuid.UUID) (int, error) {
	habit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}

	today := dates.Midnight(s.clock.Now())
	floor := dates.Midnight(habit.CreatedAt)

	cursor := today
	done, err := s.repo.IsCompleted(ctx, id, cursor)
	if err != nil {
		return 0, err
	}
	if !done {
		// A miss today leaves yesterday's run pending rather than broken.
		cursor = dates.AddDays(cursor, -1)
	}

	streak := 0
	for !cursor.Before(floor) {
		done, err := s.repo.IsCompleted(ctx, id, cursor)
		if err != nil {
			return 0, err
		}
		if !done {
			break
		}
		streak++
		cursor = dates.AddDays(cursor, -1)
	}

	return streak, nil
}

func (s *service) MaxStreak(ctx context.Context) (int, error) {
	all, _, err := s.repo.FindAll(ctx, HabitFilter{})
	if err != nil {
		return 0, err
	}

	max := 0
	for _, habit := range all {
		streak, err := s.CalculateStreak(ctx, habit.ID)
		if err != nil {
			return 0, err
		}
		if streak > max {
			max = streak
		}
	}
	return max, nil
}
