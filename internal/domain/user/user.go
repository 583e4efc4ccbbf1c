package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Placeholder profile used when the identity provider cannot be reached.
// A later user.updated event overwrites it.
const (
	PlaceholderEmail     = "temp@example.com"
	PlaceholderFirstName = "User"
	PlaceholderLastName  = "Name"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"not null;uniqueIndex;column:external_id" json:"externalId"`
	Email      string    `gorm:"not null;column:email" json:"email"`
	FirstName  string    `gorm:"not null;column:first_name" json:"firstName"`
	LastName   string    `gorm:"not null;column:last_name" json:"lastName"`
	Photo      string    `gorm:"column:photo" json:"photo"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName joins first and last name, falling back to "Anonymous".
func (u *User) DisplayName() string {
	if u == nil {
		return "Anonymous"
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return "Anonymous"
	}
	return name
}

// IsPlaceholder reports whether the record still carries the fallback profile.
func (u *User) IsPlaceholder() bool {
	return u != nil && u.Email == PlaceholderEmail && u.FirstName == PlaceholderFirstName && u.LastName == PlaceholderLastName
}
