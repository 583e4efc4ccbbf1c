package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course is the older free-standing checklist: modules of external resources.
// Resource completion lives on the progress ledger and is independent of
// lesson progression.
type Course struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"not null;column:title" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Modules     []CourseModule `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules"`
	CreatedAt   time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updatedAt"`
}

func (Course) TableName() string { return "courses" }

type CourseModule struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID        `gorm:"type:uuid;not null;index;column:course_id" json:"courseId"`
	Position  int              `gorm:"not null;column:position" json:"position"`
	Title     string           `gorm:"not null;column:title" json:"title"`
	Resources []CourseResource `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"resources"`
}

func (CourseModule) TableName() string { return "course_modules" }

type CourseResource struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID uuid.UUID `gorm:"type:uuid;not null;index;column:module_id" json:"moduleId"`
	Position int       `gorm:"not null;column:position" json:"position"`
	Title    string    `gorm:"not null;column:title" json:"title"`
	Type     string    `gorm:"not null;column:type" json:"type"`
	URL      string    `gorm:"not null;column:url" json:"url"`
}

func (CourseResource) TableName() string { return "course_resources" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (m *CourseModule) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (r *CourseResource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HasResource reports whether resourceID belongs to one of the course's modules.
func (c *Course) HasResource(resourceID uuid.UUID) bool {
	if c == nil {
		return false
	}
	for _, m := range c.Modules {
		for _, r := range m.Resources {
			if r.ID == resourceID {
				return true
			}
		}
	}
	return false
}

// ResourceIDs lists every resource id in module order.
func (c *Course) ResourceIDs() []string {
	var out []string
	if c == nil {
		return out
	}
	for _, m := range c.Modules {
		for _, r := range m.Resources {
			out = append(out, r.ID.String())
		}
	}
	return out
}
