package habits

import (
	"context"
	"errors"
	"time"

	"github.com/almanac-labs/almanac-api/internal/infrastructure/persistence/postgres/connection"
	"github.com/almanac-labs/almanac-api/pkg/dates"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// HabitFilter defines the filtering options for habits
type HabitFilter struct {
	Category *string
	Name     *string
	Page     int
	PageSize int
}

// Repository defines the persistence contract for habits and their
// completion ledger. All date arguments must be (and are defensively)
// normalized to midnight UTC before comparison.
type Repository interface {
	Create(ctx context.Context, habit *Habit) error
	FindByID(ctx context.Context, id uuid.UUID) (*Habit, error)
	FindAll(ctx context.Context, filter HabitFilter) ([]Habit, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Habit, error)
	Update(ctx context.Context, habit *Habit) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	// Completion ledger
	UpsertCompletion(ctx context.Context, habitID uuid.UUID, date time.Time, completed bool) (*CompletionRecord, error)
	IsCompleted(ctx context.Context, habitID uuid.UUID, date time.Time) (bool, error)
	CountCompletedInRange(ctx context.Context, habitIDs []uuid.UUID, start, end time.Time) (int64, error)
	ListCompletedInRange(ctx context.Context, habitIDs []uuid.UUID, start, end time.Time) ([]CompletionRecord, error)
	ListCompletions(ctx context.Context, habitID uuid.UUID, start, end *time.Time) ([]CompletionRecord, error)
	CountCompleted(ctx context.Context) (int64, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, habit *Habit) error {
	return r.db.WithContext(ctx).Create(habit).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Habit, error) {
	var habit Habit
	result := r.db.WithContext(ctx).First(&habit, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, result.Error
	}
	return &habit, nil
}

func (r *repository) FindAll(ctx context.Context, filter HabitFilter) ([]Habit, int64, error) {
	var habits []Habit
	var total int64
	query := r.db.WithContext(ctx).Model(&Habit{})

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Name != nil {
		query = query.Where("name LIKE ?", "%"+*filter.Name+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize == 0 {
		filter.PageSize = 10000
	}

	err := query.Order("created_at DESC").
		Offset(filter.Page * filter.PageSize).
		Limit(filter.PageSize).
		Find(&habits).Error
	if err != nil {
		return nil, 0, err
	}

	return habits, total, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Habit, error) {
	var habits []Habit
	if len(ids) == 0 {
		return habits, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&habits).Error
	return habits, err
}

func (r *repository) Update(ctx context.Context, habit *Habit) error {
	result := r.db.WithContext(ctx).Save(habit)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// completions cascade with the habit
		if err := tx.Where("habit_id = ?", id).Delete(&CompletionRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Habit{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrHabitNotFound
		}
		return nil
	})
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&Habit{}).Count(&total).Error
	return total, err
}

func (r *repository) UpsertCompletion(ctx context.Context, habitID uuid.UUID, date time.Time, completed bool) (*CompletionRecord, error) {
	record := &CompletionRecord{
		ID:             uuid.New(),
		HabitID:        habitID,
		CompletionDate: dates.Midnight(date),
		Completed:      completed,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "completion_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed"}),
	}).Create(record).Error
	if err != nil {
		return nil, err
	}

	// Re-read so callers see the surviving row, not the candidate insert.
	var saved CompletionRecord
	err = r.db.WithContext(ctx).
		Where("habit_id = ? AND completion_date = ?", habitID, dates.Midnight(date)).
		First(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *repository) IsCompleted(ctx context.Context, habitID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CompletionRecord{}).
		Where("habit_id = ? AND completion_date = ? AND completed = ?", habitID, dates.Midnight(date), true).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountCompletedInRange(ctx context.Context, habitIDs []uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&CompletionRecord{}).
		Where("completed = ? AND completion_date BETWEEN ? AND ?", true, dates.Midnight(start), dates.Midnight(end))
	if habitIDs != nil {
		if len(habitIDs) == 0 {
			return 0, nil
		}
		query = query.Where("habit_id IN ?", habitIDs)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *repository) ListCompletedInRange(ctx context.Context, habitIDs []uuid.UUID, start, end time.Time) ([]CompletionRecord, error) {
	var records []CompletionRecord
	query := r.db.WithContext(ctx).
		Where("completed = ? AND completion_date BETWEEN ? AND ?", true, dates.Midnight(start), dates.Midnight(end))
	if habitIDs != nil {
		if len(habitIDs) == 0 {
			return records, nil
		}
		query = query.Where("habit_id IN ?", habitIDs)
	}
	err := query.Order("completion_date ASC").Find(&records).Error
	return records, err
}

func (r *repository) ListCompletions(ctx context.Context, habitID uuid.UUID, start, end *time.Time) ([]CompletionRecord, error) {
	var records []CompletionRecord
	query := r.db.WithContext(ctx).Where("habit_id = ?", habitID)
	if start != nil {
		query = query.Where("completion_date >= ?", dates.Midnight(*start))
	}
	if end != nil {
		query = query.Where("completion_date <= ?", dates.Midnight(*end))
	}
	err := query.Order("completion_date DESC").Find(&records).Error
	return records, err
}

func (r *repository) CountCompleted(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CompletionRecord{}).
		Where("completed = ?", true).
		Count(&count).Error
	return count, err
}
