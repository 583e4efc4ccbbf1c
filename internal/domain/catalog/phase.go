package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultPhaseColor = "#3B82F6"

// Phase is a top-level curriculum stage. EstimatedDuration is in days.
type Phase struct {
	ID                uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string                         `gorm:"not null;column:name" json:"name"`
	Description       string                         `gorm:"column:description" json:"description"`
	Order             int                            `gorm:"not null;uniqueIndex;column:sort_order" json:"order"`
	IsActive          bool                           `gorm:"not null;index;column:is_active" json:"isActive"`
	EstimatedDuration int                            `gorm:"not null;column:estimated_duration" json:"estimatedDuration"`
	Prerequisites     datatypes.JSONSlice[uuid.UUID] `gorm:"column:prerequisites" json:"prerequisites"`
	Color             string                         `gorm:"not null;column:color" json:"color"`
	CreatedAt         time.Time                      `gorm:"not null" json:"createdAt"`
	UpdatedAt         time.Time                      `gorm:"not null" json:"updatedAt"`
}

func (Phase) TableName() string { return "phases" }

func (p *Phase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Color == "" {
		p.Color = DefaultPhaseColor
	}
	if p.Prerequisites == nil {
		p.Prerequisites = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}
