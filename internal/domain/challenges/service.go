package challenges

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/almanac-labs/almanac-api/internal/domain/habits"
	"github.com/almanac-labs/almanac-api/pkg/clock"
	"github.com/almanac-labs/almanac-api/pkg/dates"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
)

// CompletionThreshold is the overall progress an expired challenge needs to
// be settled as completed instead of failed.
const CompletionThreshold = 80.0

// Duration bounds in days, enforced at creation and update time.
const (
	MinDuration = 1
	MaxDuration = 365
)

// UnknownHabitsError reports habit ids in a challenge's set that do not
// resolve to existing habits.
type UnknownHabitsError struct {
	HabitIDs []uuid.UUID
}

func (e *UnknownHabitsError) Error() string {
	return fmt.Sprintf("challenge references %d unknown habit(s)", len(e.HabitIDs))
}

func (e *UnknownHabitsError) Unwrap() error { return ErrValidation }

type Service interface {
	CreateChallenge(ctx context.Context, input CreateChallengeInput) (*Challenge, error)
	GetChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error)
	ListChallenges(ctx context.Context) ([]Challenge, error)
	UpdateChallenge(ctx context.Context, id uuid.UUID, input UpdateChallengeInput) (*Challenge, error)
	DeleteChallenge(ctx context.Context, id uuid.UUID) error

	PauseChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error)
	ResumeChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error)
	CompleteChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error)

	GetProgress(ctx context.Context, id uuid.UUID) ([]DailyProgress, error)

	// RecomputeDay brings the (challenge, date) progress row up to date from
	// the completion ledger. Idempotent for unchanged ledger state.
	RecomputeDay(ctx context.Context, id uuid.UUID, date time.Time) error

	// RecomputeOverall re-derives completed_days and progress, and settles an
	// active challenge past its end date as completed or failed.
	RecomputeOverall(ctx context.Context, id uuid.UUID) error

	// HandleCompletionChange is the hook fired by the habits service after a
	// completion toggle; it re-evaluates every active challenge containing
	// the habit.
	HandleCompletionChange(ctx context.Context, habitID uuid.UUID, date time.Time)

	// SweepExpired runs the overall recomputation for every active challenge
	// and reports how many were evaluated and how many evaluations failed.
	SweepExpired(ctx context.Context) (evaluated int, failed int, err error)
}

type service struct {
	repo         Repository
	progressRepo ProgressRepository
	habitsRepo   habits.Repository
	clock        clock.Clock
	logger       *zap.Logger
}

func NewService(repo Repository, progressRepo ProgressRepository, habitsRepo habits.Repository, clk clock.Clock, logger *zap.Logger) Service {
	return &service{
		repo:         repo,
		progressRepo: progressRepo,
		habitsRepo:   habitsRepo,
		clock:        clk,
		logger:       logger,
	}
}

func (s *service) CreateChallenge(ctx context.Context, input CreateChallengeInput) (*Challenge, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.Duration < MinDuration || input.Duration > MaxDuration {
		return nil, fmt.Errorf("%w: duration must be between %d and %d days", ErrValidation, MinDuration, MaxDuration)
	}
	members, err := s.resolveHabitSet(ctx, input.HabitIDs)
	if err != nil {
		return nil, err
	}

	start := dates.Midnight(s.clock.Now())
	challenge := &Challenge{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Duration:    input.Duration,
		StartDate:   start,
		EndDate:     dates.AddDays(start, input.Duration),
		Status:      StatusActive,
		Habits:      members,
	}

	if err := s.repo.Create(ctx, challenge); err != nil {
		return nil, err
	}

	// Seed the first progress row for the creation date.
	if err := s.recomputeDay(ctx, challenge, start); err != nil {
		return nil, err
	}

	s.logger.Info("challenge created",
		zap.String("challenge_id", challenge.ID.String()),
		zap.String("name", challenge.Name),
		zap.Int("duration_days", challenge.Duration),
		zap.Int("habit_count", len(challenge.Habits)))

	return challenge, nil
}

// resolveHabitSet verifies a non-empty habit set and that every id resolves.
func (s *service) resolveHabitSet(ctx context.Context, ids []uuid.UUID) ([]habits.Habit, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: challenge needs at least one habit", ErrValidation)
	}

	members, err := s.habitsRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(members) != len(ids) {
		found := make(map[uuid.UUID]bool, len(members))
		for _, h := range members {
			found[h.ID] = true
		}
		var missing []uuid.UUID
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, &UnknownHabitsError{HabitIDs: missing}
	}
	return members, nil
}

func (s *service) GetChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListChallenges(ctx context.Context) ([]Challenge, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) UpdateChallenge(ctx context.Context, id uuid.UUID, input UpdateChallengeInput) (*Challenge, error) {
	challenge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.HabitIDs != nil {
		members, err := s.resolveHabitSet(ctx, input.HabitIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceHabits(ctx, challenge, input.HabitIDs); err != nil {
			return nil, err
		}
		challenge.Habits = members
	}

	durationChanged := false
	if input.Name != nil {
		challenge.Name = *input.Name
	}
	if input.Description != nil {
		challenge.Description = *input.Description
	}
	if input.Duration != nil && *input.Duration != challenge.Duration {
		if *input.Duration < MinDuration || *input.Duration > MaxDuration {
			return nil, fmt.Errorf("%w: duration must be between %d and %d days", ErrValidation, MinDuration, MaxDuration)
		}
		challenge.Duration = *input.Duration
		challenge.EndDate = dates.AddDays(challenge.StartDate, challenge.Duration)
		durationChanged = true
	}

	if err := s.repo.Save(ctx, challenge); err != nil {
		return nil, err
	}

	// A new duration changes the progress denominator (and possibly expiry).
	if durationChanged {
		if err := s.RecomputeOverall(ctx, challenge.ID); err != nil {
			return nil, err
		}
		return s.repo.FindByID(ctx, challenge.ID)
	}

	return challenge, nil
}

func (s *service) DeleteChallenge(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) PauseChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	challenge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if challenge.Status != StatusActive {
		return nil, fmt.Errorf("%w: cannot pause a %s challenge", ErrInvalidTransition, challenge.Status)
	}

	challenge.Status = StatusPaused
	if err := s.repo.Save(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *service) ResumeChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	challenge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if challenge.Status != StatusPaused {
		return nil, fmt.Errorf("%w: cannot resume a %s challenge", ErrInvalidTransition, challenge.Status)
	}

	challenge.Status = StatusActive
	if err := s.repo.Save(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *service) CompleteChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	challenge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if challenge.Status != StatusActive {
		return nil, fmt.Errorf("%w: cannot complete a %s challenge", ErrInvalidTransition, challenge.Status)
	}

	// Manual completion pins progress regardless of completed days.
	challenge.Status = StatusCompleted
	challenge.Progress = 100
	if err := s.repo.Save(ctx, challenge); err != nil {
		return nil, err
	}

	s.logger.Info("challenge completed manually",
		zap.String("challenge_id", challenge.ID.String()))

	return challenge, nil
}

func (s *service) GetProgress(ctx context.Context, id uuid.UUID) ([]DailyProgress, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.progressRepo.ListByChallenge(ctx, id)
}

func (s *service) RecomputeDay(ctx context.Context, id uuid.UUID, date time.Time) error {
	challenge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.recomputeDay(ctx, challenge, date)
}

func (s *service) recomputeDay(ctx context.Context, challenge *Challenge, date time.Time) error {
	day := dates.Midnight(date)

	row, err := s.progressRepo.GetOrCreate(ctx, challenge.ID, day)
	if err != nil {
		return err
	}

	total := len(challenge.Habits)
	var completed int64
	if total > 0 {
		completed, err = s.habitsRepo.CountCompletedInRange(ctx, challenge.HabitIDs(), day, day)
		if err != nil {
			return err
		}
	}

	rate := 0.0
	if total > 0 {
		rate = round1(float64(completed) / float64(total) * 100)
	}

	row.TotalHabits = total
	row.CompletedHabits = int(completed)
	row.DailyCompletionRate = rate
	row.DayCompleted = total > 0 && int(completed) == total

	return s.progressRepo.Save(ctx, row)
}

func (s *service) RecomputeOverall(ctx context.Context, id uuid.UUID) error {
	challenge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	completedDays, err := s.progressRepo.CountDayCompleted(ctx, challenge.ID)
	if err != nil {
		return err
	}

	progress := 0.0
	if challenge.Duration > 0 {
		progress = math.Min(100, round1(float64(completedDays)/float64(challenge.Duration)*100))
	}

	challenge.CompletedDays = int(completedDays)
	challenge.Progress = progress

	// Expiry is only settled for active challenges; paused ones wait for a
	// resume, completed and failed are terminal.
	if challenge.Status == StatusActive && s.clock.Now().After(challenge.EndDate) {
		if progress >= CompletionThreshold {
			challenge.Status = StatusCompleted
		} else {
			challenge.Status = StatusFailed
		}
		s.logger.Info("challenge expired",
			zap.String("challenge_id", challenge.ID.String()),
			zap.Float64("progress", progress),
			zap.String("status", string(challenge.Status)))
	}

	return s.repo.Save(ctx, challenge)
}

func (s *service) HandleCompletionChange(ctx context.Context, habitID uuid.UUID, date time.Time) {
	active, err := s.repo.ListByStatus(ctx, StatusActive)
	if err != nil {
		s.logger.Error("failed to list active challenges for completion change",
			zap.String("habit_id", habitID.String()),
			zap.Error(err))
		return
	}

	for i := range active {
		challenge := &active[i]
		if !challenge.ContainsHabit(habitID) {
			continue
		}
		if err := s.recomputeDay(ctx, challenge, date); err != nil {
			s.logger.Error("failed to recompute challenge day",
				zap.String("challenge_id", challenge.ID.String()),
				zap.Time("date", dates.Midnight(date)),
				zap.Error(err))
			continue
		}
		if err := s.RecomputeOverall(ctx, challenge.ID); err != nil {
			s.logger.Error("failed to recompute challenge progress",
				zap.String("challenge_id", challenge.ID.String()),
				zap.Error(err))
		}
	}
}

func (s *service) SweepExpired(ctx context.Context) (int, int, error) {
	active, err := s.repo.ListByStatus(ctx, StatusActive)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list active challenges: %w", err)
	}

	failed := 0
	for i := range active {
		if err := s.RecomputeOverall(ctx, active[i].ID); err != nil {
			failed++
			s.logger.Error("sweep evaluation failed",
				zap.String("challenge_id", active[i].ID.String()),
				zap.Error(err))
		}
	}

	return len(active), failed, nil
}

// round1 rounds to one decimal place; progress percentages carry a single
// decimal through the API and the database columns.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
