package models

import (
	"time"
)

// PlanStatus is the lifecycle state of a learning plan.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

// Valid reports whether s is a known plan status.
func (s PlanStatus) Valid() bool {
	return s == PlanStatusActive || s == PlanStatusArchived
}

// Plan is a learning plan owned by a single user. Plans are not ordered
// amongst themselves; they are only ever listed through pagination.
type Plan struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	ExternalID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`

	// The user id taken from the subject of the bearer token.
	UserID string     `gorm:"type:varchar(191);index;not null" json:"user_id"`
	Status PlanStatus `gorm:"type:varchar(16);index;not null;default:active" json:"status"`

	Title       string  `gorm:"not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	Modules []LearningModule `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Plan) TableName() string {
	return "plans"
}
