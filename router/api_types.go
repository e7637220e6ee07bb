package router

import (
	"time"

	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/internal/models"
	"github.com/priyxstudio/pathway/planner"
	"github.com/priyxstudio/pathway/system"
)

// ErrorResponse represents the common error payload returned by the API.
type ErrorResponse struct {
	Error     string       `json:"error"`
	Code      errdefs.Code `json:"code"`
	RequestID string       `json:"request_id,omitempty"`
}

// SystemSummaryResponse describes the short system response.
type SystemSummaryResponse struct {
	Architecture  string `json:"architecture"`
	CPUCount      int    `json:"cpu_count"`
	KernelVersion string `json:"kernel_version"`
	OS            string `json:"os"`
	Version       string `json:"version"`
}

// SystemDetailResponse is returned by the system endpoint when v=2 is passed.
type SystemDetailResponse struct {
	Version     string              `json:"version"`
	System      system.System       `json:"system"`
	Utilization *system.Utilization `json:"utilization"`
}

// DeleteResponse carries the identifier of a deleted entity.
type DeleteResponse struct {
	ID string `json:"id"`
}

// PlanCreateRequest is the body accepted when creating a plan.
type PlanCreateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

// PlanUpdateRequest is a partial plan update. A null description clears it.
type PlanUpdateRequest struct {
	Title       *string                  `json:"title"`
	Description planner.Nullable[string] `json:"description" swaggertype:"string"`
	Status      *models.PlanStatus       `json:"status" binding:"omitempty,oneof=active archived" swaggertype:"string" enums:"active,archived"`
}

// ModuleCreateRequest is the body accepted when creating a module.
type ModuleCreateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Expanded    bool    `json:"expanded"`
}

// ModuleUpdateRequest is a partial module update. A null description clears it.
type ModuleUpdateRequest struct {
	Title       *string                  `json:"title"`
	Description planner.Nullable[string] `json:"description" swaggertype:"string"`
	Expanded    *bool                    `json:"expanded"`
}

// ModuleOrderRequest moves a module to a new position in its plan.
type ModuleOrderRequest struct {
	NewOrder *int `json:"newOrder" binding:"required"`
}

// TaskCreateRequest is the body accepted when creating a task.
type TaskCreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Memo        *string    `json:"memo"`
}

// TaskUpdateRequest is a partial task update. Nullable fields are cleared when
// sent as null.
type TaskUpdateRequest struct {
	Title       *string                     `json:"title"`
	Description planner.Nullable[string]    `json:"description" swaggertype:"string"`
	Completed   *bool                       `json:"completed"`
	DueDate     planner.Nullable[time.Time] `json:"dueDate" swaggertype:"string" format:"date-time"`
	Memo        planner.Nullable[string]    `json:"memo" swaggertype:"string"`
}

// TaskMoveRequest moves a task within its module or into another module of the
// same plan. Omitting newOrder appends the task to the target module.
type TaskMoveRequest struct {
	TargetModuleID string `json:"targetModuleId" binding:"omitempty,uuid"`
	NewOrder       *int   `json:"newOrder"`
}

// PlanPageResponse is a page of plans.
type PlanPageResponse struct {
	Items      []planner.PlanView `json:"items"`
	HasNext    bool               `json:"hasNext"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

// ModulePageResponse is a page of modules.
type ModulePageResponse struct {
	Items      []planner.ModuleView `json:"items"`
	HasNext    bool                 `json:"hasNext"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

// TaskPageResponse is a page of tasks.
type TaskPageResponse struct {
	Items      []planner.TaskView `json:"items"`
	HasNext    bool               `json:"hasNext"`
	NextCursor string             `json:"nextCursor,omitempty"`
}
