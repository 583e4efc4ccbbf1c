package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Completion is one entry of a completion history list. TimeSpent is in minutes.
type Completion struct {
	ID           uuid.UUID `json:"id"`
	CompletedAt  time.Time `json:"completedAt"`
	TimeSpent    int       `json:"timeSpent"`
	PointsEarned int       `json:"pointsEarned"`
}

type Achievement struct {
	Type        string    `json:"type"`
	EarnedAt    time.Time `json:"earnedAt"`
	Description string    `json:"description"`
}

// Ledger is a user's progress record: cursor, completion history and counters.
// Version is bumped on every write and guards concurrent updates.
type Ledger struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"userId"`

	CurrentPhase  *uuid.UUID `gorm:"type:uuid;column:current_phase" json:"currentPhase"`
	CurrentWeek   *uuid.UUID `gorm:"type:uuid;column:current_week" json:"currentWeek"`
	CurrentLesson *uuid.UUID `gorm:"type:uuid;column:current_lesson" json:"currentLesson"`

	CompletedPhases  datatypes.JSONSlice[Completion] `gorm:"column:completed_phases" json:"completedPhases"`
	CompletedWeeks   datatypes.JSONSlice[Completion] `gorm:"column:completed_weeks" json:"completedWeeks"`
	CompletedLessons datatypes.JSONSlice[Completion] `gorm:"column:completed_lessons" json:"completedLessons"`

	TotalPoints      int        `gorm:"not null;index;column:total_points" json:"totalPoints"`
	CurrentStreak    int        `gorm:"not null;column:current_streak" json:"currentStreak"`
	LongestStreak    int        `gorm:"not null;column:longest_streak" json:"longestStreak"`
	LastActivityDate *time.Time `gorm:"column:last_activity_date" json:"lastActivityDate"`
	TotalTimeSpent   int        `gorm:"not null;column:total_time_spent" json:"totalTimeSpent"`

	Achievements       datatypes.JSONSlice[Achievement] `gorm:"column:achievements" json:"achievements"`
	CompletedResources datatypes.JSONSlice[string]      `gorm:"column:completed_resources" json:"completedResources"`

	Version   int       `gorm:"not null;default:0;column:version" json:"version"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Ledger) TableName() string { return "user_progress" }

func (l *Ledger) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.normalize()
	return nil
}

// New returns an empty ledger for userID with the given cursor.
func New(userID uuid.UUID, phase, week, lesson *uuid.UUID) *Ledger {
	l := &Ledger{
		ID:            uuid.New(),
		UserID:        userID,
		CurrentPhase:  phase,
		CurrentWeek:   week,
		CurrentLesson: lesson,
	}
	l.normalize()
	return l
}

func (l *Ledger) normalize() {
	if l.CompletedPhases == nil {
		l.CompletedPhases = datatypes.JSONSlice[Completion]{}
	}
	if l.CompletedWeeks == nil {
		l.CompletedWeeks = datatypes.JSONSlice[Completion]{}
	}
	if l.CompletedLessons == nil {
		l.CompletedLessons = datatypes.JSONSlice[Completion]{}
	}
	if l.Achievements == nil {
		l.Achievements = datatypes.JSONSlice[Achievement]{}
	}
	if l.CompletedResources == nil {
		l.CompletedResources = datatypes.JSONSlice[string]{}
	}
}

func (l *Ledger) AfterFind(tx *gorm.DB) error {
	l.normalize()
	return nil
}

func contains(list []Completion, id uuid.UUID) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (l *Ledger) HasLesson(id uuid.UUID) bool { return contains(l.CompletedLessons, id) }
func (l *Ledger) HasWeek(id uuid.UUID) bool { return contains(l.CompletedWeeks, id) }
func (l *Ledger) HasPhase(id uuid.UUID) bool { return contains(l.CompletedPhases, id) }

// LessonSet indexes completed lesson ids for repeated membership checks.
func (l *Ledger) LessonSet() map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(l.CompletedLessons))
	for _, c := range l.CompletedLessons {
		out[c.ID] = struct{}{}
	}
	return out
}

// ToggleResource adds id to CompletedResources if absent and removes it otherwise.
// It reports whether the resource is completed afterwards.
func (l *Ledger) ToggleResource(id string) bool {
	for i, r := range l.CompletedResources {
		if r == id {
			l.CompletedResources = append(l.CompletedResources[:i:i], l.CompletedResources[i+1:]...)
			return false
		}
	}
	l.CompletedResources = append(l.CompletedResources, id)
	return true
}
