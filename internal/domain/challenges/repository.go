package challenges

import (
	"context"
	"errors"
	"time"

	"github.com/almanac-labs/almanac-api/internal/infrastructure/persistence/postgres/connection"
	"github.com/almanac-labs/almanac-api/pkg/dates"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrProgressNotFound  = errors.New("challenge progress not found")
)

// Repository defines the persistence contract for challenges. Habits are
// always preloaded; the aggregator needs the full set on every evaluation.
type Repository interface {
	Create(ctx context.Context, challenge *Challenge) error
	FindByID(ctx context.Context, id uuid.UUID) (*Challenge, error)
	FindAll(ctx context.Context) ([]Challenge, error)
	ListByStatus(ctx context.Context, status Status) ([]Challenge, error)
	Save(ctx context.Context, challenge *Challenge) error
	ReplaceHabits(ctx context.Context, challenge *Challenge, set []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[Status]int64, int64, error)
}

// ProgressRepository defines the persistence contract for per-day challenge
// progress rows.
type ProgressRepository interface {
	GetOrCreate(ctx context.Context, challengeID uuid.UUID, date time.Time) (*DailyProgress, error)
	Save(ctx context.Context, row *DailyProgress) error
	ListByChallenge(ctx context.Context, challengeID uuid.UUID) ([]DailyProgress, error)
	CountDayCompleted(ctx context.Context, challengeID uuid.UUID) (int64, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, challenge *Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	var challenge Challenge
	result := r.db.WithContext(ctx).Preload("Habits").First(&challenge, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, result.Error
	}
	return &challenge, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Challenge, error) {
	var list []Challenge
	err := r.db.WithContext(ctx).Preload("Habits").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Challenge, error) {
	var list []Challenge
	err := r.db.WithContext(ctx).Preload("Habits").
		Where("status = ?", status).
		Find(&list).Error
	return list, err
}

func (r *repository) Save(ctx context.Context, challenge *Challenge) error {
	// Omit the association so a stale in-memory habit slice can never clobber
	// the join table; ReplaceHabits is the only writer of the set.
	result := r.db.WithContext(ctx).Omit("Habits").Save(challenge)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChallengeNotFound
	}
	return nil
}

func (r *repository) ReplaceHabits(ctx context.Context, challenge *Challenge, set []uuid.UUID) error {
	members := make([]habitRef, len(set))
	for i, id := range set {
		members[i] = habitRef{ID: id}
	}
	return r.db.WithContext(ctx).Model(challenge).Association("Habits").Replace(members)
}

// habitRef lets the association API address habit rows by id without pulling
// in the habits package's hooks.
type habitRef struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`
}

func (habitRef) TableName() string { return "habits" }

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// progress rows cascade with the challenge
		if err := tx.Where("challenge_id = ?", id).Delete(&DailyProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM challenge_habits WHERE challenge_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&Challenge{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrChallengeNotFound
		}
		return nil
	})
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int64, int64, error) {
	var results []struct {
		Status Status
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&Challenge{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[Status]int64)
	var total int64
	for _, row := range results {
		counts[row.Status] = row.Count
		total += row.Count
	}
	return counts, total, nil
}

type progressRepository struct {
	db *connection.Database
}

func NewProgressRepository(db *connection.Database) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetOrCreate(ctx context.Context, challengeID uuid.UUID, date time.Time) (*DailyProgress, error) {
	day := dates.Midnight(date)

	var row DailyProgress
	err := r.db.WithContext(ctx).
		Where("challenge_id = ? AND progress_date = ?", challengeID, day).
		First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row = DailyProgress{
		ID:           uuid.New(),
		ChallengeID:  challengeID,
		ProgressDate: day,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *progressRepository) Save(ctx context.Context, row *DailyProgress) error {
	result := r.db.WithContext(ctx).Save(row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProgressNotFound
	}
	return nil
}

func (r *progressRepository) ListByChallenge(ctx context.Context, challengeID uuid.UUID) ([]DailyProgress, error) {
	var rows []DailyProgress
	err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("progress_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *progressRepository) CountDayCompleted(ctx context.Context, challengeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DailyProgress{}).
		Where("challenge_id = ? AND day_completed = ?", challengeID, true).
		Count(&count).Error
	return count, err
}
