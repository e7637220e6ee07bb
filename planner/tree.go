package planner

import (
	"context"
	"time"

	"emperror.dev/errors"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/internal/models"
)

// treeRow is one row of the plan, module and task join. Module and task
// columns are nil for a plan without modules or a module without tasks.
type treeRow struct {
	ModuleID          *uint      `gorm:"column:module_id"`
	ModuleExternalID  *string    `gorm:"column:module_external_id"`
	ModuleOrder       *int       `gorm:"column:module_order"`
	ModuleTitle       *string    `gorm:"column:module_title"`
	ModuleDescription *string    `gorm:"column:module_description"`
	ModuleExpanded    *bool      `gorm:"column:module_expanded"`
	ModuleCreatedAt   *time.Time `gorm:"column:module_created_at"`
	ModuleUpdatedAt   *time.Time `gorm:"column:module_updated_at"`

	TaskID          *uint      `gorm:"column:task_id"`
	TaskExternalID  *string    `gorm:"column:task_external_id"`
	TaskOrder       *int       `gorm:"column:task_order"`
	TaskTitle       *string    `gorm:"column:task_title"`
	TaskDescription *string    `gorm:"column:task_description"`
	TaskCompleted   *bool      `gorm:"column:task_completed"`
	TaskCompletedAt *time.Time `gorm:"column:task_completed_at"`
	TaskDueDate     *time.Time `gorm:"column:task_due_date"`
	TaskMemo        *string    `gorm:"column:task_memo"`
	TaskCreatedAt   *time.Time `gorm:"column:task_created_at"`
	TaskUpdatedAt   *time.Time `gorm:"column:task_updated_at"`
}

const treeColumns = `learning_modules.id AS module_id,
	learning_modules.external_id AS module_external_id,
	learning_modules.order_index AS module_order,
	learning_modules.title AS module_title,
	learning_modules.description AS module_description,
	learning_modules.expanded AS module_expanded,
	learning_modules.created_at AS module_created_at,
	learning_modules.updated_at AS module_updated_at,
	tasks.id AS task_id,
	tasks.external_id AS task_external_id,
	tasks.order_index AS task_order,
	tasks.title AS task_title,
	tasks.description AS task_description,
	tasks.completed AS task_completed,
	tasks.completed_at AS task_completed_at,
	tasks.due_date AS task_due_date,
	tasks.memo AS task_memo,
	tasks.created_at AS task_created_at,
	tasks.updated_at AS task_updated_at`

// GetPlanTree returns a plan with every module and task, in order.
func (s *Service) GetPlanTree(ctx context.Context, user, planID string) (PlanTree, error) {
	var tree PlanTree
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		plan, err := resolvePlan(tx, user, planID, false)
		if err != nil {
			return err
		}
		rows, err := loadTree(tx, plan.ID)
		if err != nil {
			return err
		}
		tree = assembleTree(plan, rows)
		return nil
	})
	return tree, err
}

func loadTree(tx *gorm.DB, planID uint) ([]treeRow, error) {
	var rows []treeRow
	err := tx.Table("plans").
		Select(treeColumns).
		Joins("LEFT JOIN learning_modules ON learning_modules.plan_id = plans.id").
		Joins("LEFT JOIN tasks ON tasks.module_id = learning_modules.id").
		Where("plans.id = ?", planID).
		Order("learning_modules.order_index ASC").
		Order("learning_modules.id ASC").
		Order("tasks.order_index ASC").
		Order("tasks.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load plan tree")
	}
	return rows, nil
}

// assembleTree nests the flat join rows under their plan. Rows arrive in
// module then task order; a module or task is added the first time its id is
// seen, so duplicate rows from the join fan out are dropped and no further
// sorting is needed.
func assembleTree(plan *models.Plan, rows []treeRow) PlanTree {
	tree := PlanTree{PlanView: newPlanView(plan), Modules: []ModuleNode{}}

	index := make(map[uint]int)
	seen := make(map[uint]struct{})
	for _, r := range rows {
		if r.ModuleID == nil {
			continue
		}
		pos, ok := index[*r.ModuleID]
		if !ok {
			pos = len(tree.Modules)
			index[*r.ModuleID] = pos
			tree.Modules = append(tree.Modules, ModuleNode{
				ModuleView: ModuleView{
					ID:          deref(r.ModuleExternalID),
					PlanID:      plan.ExternalID,
					Title:       deref(r.ModuleTitle),
					Description: r.ModuleDescription,
					Order:       deref(r.ModuleOrder),
					Expanded:    deref(r.ModuleExpanded),
					CreatedAt:   utc(deref(r.ModuleCreatedAt)),
					UpdatedAt:   utc(deref(r.ModuleUpdatedAt)),
				},
				Tasks: []TaskView{},
			})
		}

		if r.TaskID == nil {
			continue
		}
		if _, dup := seen[*r.TaskID]; dup {
			continue
		}
		seen[*r.TaskID] = struct{}{}

		node := &tree.Modules[pos]
		completed := deref(r.TaskCompleted)
		node.Tasks = append(node.Tasks, TaskView{
			ID:          deref(r.TaskExternalID),
			ModuleID:    node.ID,
			Title:       deref(r.TaskTitle),
			Description: r.TaskDescription,
			Order:       deref(r.TaskOrder),
			Completed:   completed,
			CompletedAt: utcp(r.TaskCompletedAt),
			DueDate:     utcp(r.TaskDueDate),
			Memo:        r.TaskMemo,
			CreatedAt:   utc(deref(r.TaskCreatedAt)),
			UpdatedAt:   utc(deref(r.TaskUpdatedAt)),
		})
		node.Progress.add(completed)
		tree.Progress.add(completed)
	}
	return tree
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
