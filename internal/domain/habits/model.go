package habits

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Habit struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name        string    `gorm:"size:80;not null"`
	Category    string    `gorm:"size:40;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;default:current_timestamp"`
	UpdatedAt   time.Time `gorm:"not null;default:current_timestamp;autoUpdateTime"`
}

// TableName specifies the table name for the Habit model
func (Habit) TableName() string {
	return "habits"
}

// BeforeCreate is called before creating a new habit record
func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// CompletionRecord marks whether a habit was done on one calendar day.
// At most one record exists per (habit, day); toggling the same day again
// overwrites the existing row.
type CompletionRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	HabitID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_habit_completion_day,priority:1"`
	CompletionDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_habit_completion_day,priority:2"`
	Completed      bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"not null;default:current_timestamp"`
}

// TableName specifies the table name for the CompletionRecord model
func (CompletionRecord) TableName() string {
	return "habit_completions"
}

func (r *CompletionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CreateHabitInput represents the input for creating a new habit
type CreateHabitInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// UpdateHabitInput represents the input for updating a habit
type UpdateHabitInput struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
}
