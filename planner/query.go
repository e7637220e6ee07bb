package planner

import (
	"context"

	"emperror.dev/errors"

	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/internal/models"
	"github.com/priyxstudio/pathway/pagination"
)

var planSchema = pagination.Schema{
	Fields: []pagination.Field{
		{Name: "createdAt", Kind: pagination.KindTime},
		{Name: "updatedAt", Kind: pagination.KindTime},
		{Name: "title", Kind: pagination.KindString},
	},
	DefaultField:     "createdAt",
	DefaultDirection: pagination.Desc,
}

// childSchema is shared by modules and tasks, which both default to their
// position within the parent.
var childSchema = pagination.Schema{
	Fields: []pagination.Field{
		{Name: "order", Column: "order_index", Kind: pagination.KindInt},
		{Name: "createdAt", Kind: pagination.KindTime},
		{Name: "updatedAt", Kind: pagination.KindTime},
		{Name: "title", Kind: pagination.KindString},
	},
	DefaultField:     "order",
	DefaultDirection: pagination.Asc,
}

func planKey(field string) func(models.Plan) (interface{}, uint) {
	return func(p models.Plan) (interface{}, uint) {
		switch field {
		case "updatedAt":
			return p.UpdatedAt, p.ID
		case "title":
			return p.Title, p.ID
		default:
			return p.CreatedAt, p.ID
		}
	}
}

func moduleKey(field string) func(models.LearningModule) (interface{}, uint) {
	return func(m models.LearningModule) (interface{}, uint) {
		switch field {
		case "createdAt":
			return m.CreatedAt, m.ID
		case "updatedAt":
			return m.UpdatedAt, m.ID
		case "title":
			return m.Title, m.ID
		default:
			return m.Order, m.ID
		}
	}
}

func taskKey(field string) func(models.Task) (interface{}, uint) {
	return func(t models.Task) (interface{}, uint) {
		switch field {
		case "createdAt":
			return t.CreatedAt, t.ID
		case "updatedAt":
			return t.UpdatedAt, t.ID
		case "title":
			return t.Title, t.ID
		default:
			return t.Order, t.ID
		}
	}
}

// ListPlans returns one page of the plans owned by user, optionally limited
// to a single status.
func (s *Service) ListPlans(ctx context.Context, user string, req pagination.Request, status string) (pagination.Page[PlanView], error) {
	q, err := planSchema.Resolve(req, s.bounds)
	if err != nil {
		return pagination.Page[PlanView]{}, err
	}

	db := s.read(ctx).Model(&models.Plan{}).Where("user_id = ?", user)
	if status != "" {
		if !models.PlanStatus(status).Valid() {
			return pagination.Page[PlanView]{}, errdefs.InvalidRequest("status must be %q or %q", models.PlanStatusActive, models.PlanStatusArchived)
		}
		db = db.Where("status = ?", status)
	}

	var rows []models.Plan
	if err := q.Apply(db).Find(&rows).Error; err != nil {
		return pagination.Page[PlanView]{}, errdefs.Classify(errors.Wrap(err, "failed to list plans"))
	}
	page, err := pagination.Build(rows, q, planKey(q.Field.Name))
	if err != nil {
		return pagination.Page[PlanView]{}, err
	}
	return pagination.Map(page, func(p models.Plan) PlanView { return newPlanView(&p) }), nil
}

// ListModules returns one page of the modules of a plan.
func (s *Service) ListModules(ctx context.Context, user, planID string, req pagination.Request) (pagination.Page[ModuleView], error) {
	q, err := childSchema.Resolve(req, s.bounds)
	if err != nil {
		return pagination.Page[ModuleView]{}, err
	}
	plan, err := resolvePlan(s.read(ctx), user, planID, false)
	if err != nil {
		return pagination.Page[ModuleView]{}, errdefs.Classify(err)
	}

	var rows []models.LearningModule
	db := s.read(ctx).Model(&models.LearningModule{}).Where("plan_id = ?", plan.ID)
	if err := q.Apply(db).Find(&rows).Error; err != nil {
		return pagination.Page[ModuleView]{}, errdefs.Classify(errors.Wrap(err, "failed to list modules"))
	}
	page, err := pagination.Build(rows, q, moduleKey(q.Field.Name))
	if err != nil {
		return pagination.Page[ModuleView]{}, err
	}
	return pagination.Map(page, func(m models.LearningModule) ModuleView { return newModuleView(&m, plan.ExternalID) }), nil
}

// ListTasks returns one page of the tasks of a module.
func (s *Service) ListTasks(ctx context.Context, user, moduleID string, req pagination.Request) (pagination.Page[TaskView], error) {
	q, err := childSchema.Resolve(req, s.bounds)
	if err != nil {
		return pagination.Page[TaskView]{}, err
	}
	module, _, err := resolveModule(s.read(ctx), user, moduleID, false)
	if err != nil {
		return pagination.Page[TaskView]{}, errdefs.Classify(err)
	}

	var rows []models.Task
	db := s.read(ctx).Model(&models.Task{}).Where("module_id = ?", module.ID)
	if err := q.Apply(db).Find(&rows).Error; err != nil {
		return pagination.Page[TaskView]{}, errdefs.Classify(errors.Wrap(err, "failed to list tasks"))
	}
	page, err := pagination.Build(rows, q, taskKey(q.Field.Name))
	if err != nil {
		return pagination.Page[TaskView]{}, err
	}
	return pagination.Map(page, func(t models.Task) TaskView { return newTaskView(&t, module.ExternalID) }), nil
}
