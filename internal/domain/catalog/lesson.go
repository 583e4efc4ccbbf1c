package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultLessonPoints = 10

type LessonType string

const (
	LessonVideo      LessonType = "video"
	LessonWorkshop   LessonType = "workshop"
	LessonProject    LessonType = "project"
	LessonReading    LessonType = "reading"
	LessonQuiz       LessonType = "quiz"
	LessonAssignment LessonType = "assignment"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonVideo, LessonWorkshop, LessonProject, LessonReading, LessonQuiz, LessonAssignment:
		return true
	}
	return false
}

type ResourceType string

const (
	ResourceYouTube ResourceType = "youtube"
	ResourcePDF     ResourceType = "pdf"
	ResourceNotion  ResourceType = "notion"
	ResourceLink    ResourceType = "link"
	ResourceMeet    ResourceType = "meet"
)

type LessonResource struct {
	Title string       `json:"title"`
	URL   string       `json:"url"`
	Type  ResourceType `json:"type"`
}

// LessonContent.Duration is in minutes.
type LessonContent struct {
	Duration     int              `json:"duration"`
	VideoURL     string           `json:"videoUrl,omitempty"`
	ReadingURL   string           `json:"readingUrl,omitempty"`
	Instructions string           `json:"instructions,omitempty"`
	Resources    []LessonResource `json:"resources"`
}

type Lesson struct {
	ID            uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	WeekID        uuid.UUID                         `gorm:"type:uuid;not null;uniqueIndex:idx_lesson_week_order,priority:1;column:week_id" json:"weekId"`
	DayNumber     int                               `gorm:"not null;column:day_number" json:"dayNumber"`
	Title         string                            `gorm:"not null;column:title" json:"title"`
	Description   string                            `gorm:"column:description" json:"description"`
	Type          LessonType                        `gorm:"not null;column:type" json:"type"`
	Content       datatypes.JSONType[LessonContent] `gorm:"column:content" json:"content"`
	Points        int                               `gorm:"not null;column:points" json:"points"`
	IsActive      bool                              `gorm:"not null;index;column:is_active" json:"isActive"`
	Order         int                               `gorm:"not null;uniqueIndex:idx_lesson_week_order,priority:2;column:sort_order" json:"order"`
	Prerequisites datatypes.JSONSlice[uuid.UUID]    `gorm:"column:prerequisites" json:"prerequisites"`
	CreatedAt     time.Time                         `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time                         `gorm:"not null" json:"updatedAt"`
}

func (Lesson) TableName() string { return "lessons" }

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Prerequisites == nil {
		l.Prerequisites = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

// Duration returns the lesson's nominal length in minutes.
func (l *Lesson) Duration() int {
	if l == nil {
		return 0
	}
	return l.Content.Data().Duration
}
