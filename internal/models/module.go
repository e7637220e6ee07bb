package models

import (
	"time"
)

// LearningModule is a single module within a plan. Order is dense within the
// plan and starts at 1.
type LearningModule struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	ExternalID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`

	PlanID uint `gorm:"not null;index:idx_learning_modules_plan_order,priority:1" json:"-"`
	Order  int  `gorm:"column:order_index;not null;index:idx_learning_modules_plan_order,priority:2" json:"order"`

	Title       string  `gorm:"not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`
	Expanded    bool    `gorm:"not null;default:false" json:"expanded"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	Tasks []Task `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (LearningModule) TableName() string {
	return "learning_modules"
}
