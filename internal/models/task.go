package models

import (
	"time"
)

// Task is a single task within a module. Order is dense within the module and
// starts at 1.
type Task struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	ExternalID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`

	ModuleID uint `gorm:"not null;index:idx_tasks_module_order,priority:1" json:"-"`
	Order    int  `gorm:"column:order_index;not null;index:idx_tasks_module_order,priority:2" json:"order"`

	Title       string  `gorm:"not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`

	// Completed and CompletedAt are always written together.
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`

	DueDate *time.Time `json:"due_date"`
	Memo    *string    `gorm:"type:text" json:"memo"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// SetCompleted toggles completion and keeps the completion timestamp in step
// with the flag.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	if completed == t.Completed {
		return
	}
	t.Completed = completed
	if completed {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}
