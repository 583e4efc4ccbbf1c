package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Week struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	PhaseID           uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_week_phase_number,priority:1;column:phase_id" json:"phaseId"`
	WeekNumber        int                         `gorm:"not null;uniqueIndex:idx_week_phase_number,priority:2;column:week_number" json:"weekNumber"`
	Title             string                      `gorm:"not null;column:title" json:"title"`
	Description       string                      `gorm:"column:description" json:"description"`
	IsActive          bool                        `gorm:"not null;index;column:is_active" json:"isActive"`
	EstimatedDuration int                         `gorm:"not null;column:estimated_duration" json:"estimatedDuration"`
	Objectives        datatypes.JSONSlice[string] `gorm:"column:objectives" json:"objectives"`
	CreatedAt         time.Time                   `gorm:"not null" json:"createdAt"`
	UpdatedAt         time.Time                   `gorm:"not null" json:"updatedAt"`
}

func (Week) TableName() string { return "weeks" }

func (w *Week) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Objectives == nil {
		w.Objectives = datatypes.JSONSlice[string]{}
	}
	return nil
}
