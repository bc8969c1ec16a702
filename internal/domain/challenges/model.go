package challenges

import (
	"time"

	"github.com/almanac-labs/almanac-api/internal/domain/habits"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a challenge. Completed and failed are
// terminal; paused challenges are invisible to the expiration sweep until
// resumed.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Challenge is a fixed-duration bundle of habits pursued together.
// CompletedDays and Progress are derived caches owned by the aggregator; the
// only writer allowed to set Progress directly is the manual complete
// transition, which pins it to 100.
type Challenge struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name          string         `gorm:"size:100;not null"`
	Description   string         `gorm:"type:text"`
	Duration      int            `gorm:"not null"`
	StartDate     time.Time      `gorm:"type:date;not null"`
	EndDate       time.Time      `gorm:"type:date;not null"`
	Status        Status         `gorm:"type:varchar(20);not null;default:'active'"`
	CompletedDays int            `gorm:"not null;default:0"`
	Progress      float64        `gorm:"type:decimal(5,2);not null;default:0"`
	Habits        []habits.Habit `gorm:"many2many:challenge_habits"`
	CreatedAt     time.Time      `gorm:"not null;default:current_timestamp"`
	UpdatedAt     time.Time      `gorm:"not null;default:current_timestamp;autoUpdateTime"`
}

// TableName specifies the table name for the Challenge model
func (Challenge) TableName() string {
	return "challenges"
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// HabitIDs returns the ids of the challenge's habit set.
func (c *Challenge) HabitIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Habits))
	for i, h := range c.Habits {
		ids[i] = h.ID
	}
	return ids
}

// ContainsHabit reports whether the habit belongs to the challenge.
func (c *Challenge) ContainsHabit(id uuid.UUID) bool {
	for _, h := range c.Habits {
		if h.ID == id {
			return true
		}
	}
	return false
}

// DailyProgress is one evaluated day of a challenge. Rows are created lazily
// the first time a (challenge, date) pair is evaluated and updated in place
// on every later evaluation; DayCompleted is true iff every habit in the set
// was completed that day and the set was non-empty.
type DailyProgress struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ChallengeID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_progress_day,priority:1"`
	ProgressDate        time.Time `gorm:"type:date;not null;uniqueIndex:idx_challenge_progress_day,priority:2"`
	CompletedHabits     int       `gorm:"not null;default:0"`
	TotalHabits         int       `gorm:"not null;default:0"`
	DailyCompletionRate float64   `gorm:"type:decimal(5,2);not null;default:0"`
	DayCompleted        bool      `gorm:"not null;default:false"`
	CreatedAt           time.Time `gorm:"not null;default:current_timestamp"`
	UpdatedAt           time.Time `gorm:"not null;default:current_timestamp;autoUpdateTime"`
}

// TableName specifies the table name for the DailyProgress model
func (DailyProgress) TableName() string {
	return "challenge_progress"
}

func (p *DailyProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CreateChallengeInput represents the input for creating a new challenge
type CreateChallengeInput struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Duration    int         `json:"duration"`
	HabitIDs    []uuid.UUID `json:"habit_ids"`
}

// UpdateChallengeInput represents the input for updating a challenge.
// A nil HabitIDs leaves the habit set unchanged.
type UpdateChallengeInput struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Duration    *int        `json:"duration,omitempty"`
	HabitIDs    []uuid.UUID `json:"habit_ids,omitempty"`
}
