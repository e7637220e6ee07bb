package planner

import (
	"time"

	"github.com/priyxstudio/pathway/internal/models"
)

// PlanView is the client facing representation of a plan. Numeric ids never
// leave the service.
type PlanView struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      models.PlanStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type ModuleView struct {
	ID          string    `json:"id"`
	PlanID      string    `json:"planId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Order       int       `json:"order"`
	Expanded    bool      `json:"expanded"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TaskView struct {
	ID          string     `json:"id"`
	ModuleID    string     `json:"moduleId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Order       int        `json:"order"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	DueDate     *time.Time `json:"dueDate"`
	Memo        *string    `json:"memo"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Progress counts the completed tasks below a module or plan.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

func (p *Progress) add(completed bool) {
	p.Total++
	if completed {
		p.Completed++
	}
}

// ModuleNode is a module of a plan tree together with its tasks in order.
type ModuleNode struct {
	ModuleView
	Tasks    []TaskView `json:"tasks"`
	Progress Progress   `json:"progress"`
}

// PlanTree is a plan with all of its modules and tasks in order.
type PlanTree struct {
	PlanView
	Modules  []ModuleNode `json:"modules"`
	Progress Progress     `json:"progress"`
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func utcp(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func newPlanView(p *models.Plan) PlanView {
	return PlanView{
		ID:          p.ExternalID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		CreatedAt:   utc(p.CreatedAt),
		UpdatedAt:   utc(p.UpdatedAt),
	}
}

func newModuleView(m *models.LearningModule, planID string) ModuleView {
	return ModuleView{
		ID:          m.ExternalID,
		PlanID:      planID,
		Title:       m.Title,
		Description: m.Description,
		Order:       m.Order,
		Expanded:    m.Expanded,
		CreatedAt:   utc(m.CreatedAt),
		UpdatedAt:   utc(m.UpdatedAt),
	}
}

func newTaskView(t *models.Task, moduleID string) TaskView {
	return TaskView{
		ID:          t.ExternalID,
		ModuleID:    moduleID,
		Title:       t.Title,
		Description: t.Description,
		Order:       t.Order,
		Completed:   t.Completed,
		CompletedAt: utcp(t.CompletedAt),
		DueDate:     utcp(t.DueDate),
		Memo:        t.Memo,
		CreatedAt:   utc(t.CreatedAt),
		UpdatedAt:   utc(t.UpdatedAt),
	}
}
