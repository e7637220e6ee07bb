package planner

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/internal/database"
	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/internal/models"
	"github.com/priyxstudio/pathway/ordering"
)

type CreateTaskInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Memo        *string
}

// UpdateTaskInput is a partial update; nil and unset fields are left alone.
type UpdateTaskInput struct {
	Title       *string
	Description Nullable[string]
	Completed   *bool
	DueDate     Nullable[time.Time]
	Memo        Nullable[string]
}

// MoveTaskInput describes where a task should go. An empty TargetModuleID
// keeps the task in its module. A nil NewOrder appends the task to the end of
// another module and is required when staying in the same module.
type MoveTaskInput struct {
	TargetModuleID string
	NewOrder       *int
}

// CreateTask appends a new task to the end of a module.
func (s *Service) CreateTask(ctx context.Context, user, moduleID string, in CreateTaskInput) (TaskView, error) {
	title, err := validTitle(in.Title)
	if err != nil {
		return TaskView{}, err
	}
	var view TaskView
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		module, _, err := resolveModule(tx, user, moduleID, true)
		if err != nil {
			return err
		}
		order, err := ordering.Append(tx, ordering.Tasks.In(module.ID))
		if err != nil {
			return err
		}
		task := models.Task{
			ExternalID:  uuid.NewString(),
			ModuleID:    module.ID,
			Order:       order,
			Title:       title,
			Description: in.Description,
			DueDate:     utcp(in.DueDate),
			Memo:        in.Memo,
		}
		if err := tx.Create(&task).Error; err != nil {
			return errors.Wrap(err, "failed to create task")
		}
		view = newTaskView(&task, module.ExternalID)
		return nil
	})
	return view, err
}

// UpdateTask applies a partial update to the non-order fields of a task.
// Completing a task stamps the completion time, reopening it clears it.
func (s *Service) UpdateTask(ctx context.Context, user, taskID string, in UpdateTaskInput) (TaskView, error) {
	var view TaskView
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		task, module, _, err := resolveTask(tx, user, taskID, false)
		if err != nil {
			return err
		}

		var columns []string
		if in.Title != nil {
			if task.Title, err = validTitle(*in.Title); err != nil {
				return err
			}
			columns = append(columns, "title")
		}
		if in.Description.Set {
			task.Description = in.Description.Value
			columns = append(columns, "description")
		}
		if in.Completed != nil && *in.Completed != task.Completed {
			task.SetCompleted(*in.Completed, database.Now())
			columns = append(columns, "completed", "completed_at")
		}
		if in.DueDate.Set {
			task.DueDate = utcp(in.DueDate.Value)
			columns = append(columns, "due_date")
		}
		if in.Memo.Set {
			task.Memo = in.Memo.Value
			columns = append(columns, "memo")
		}
		if err := saveColumns(tx, task, columns); err != nil {
			return errors.Wrap(err, "failed to update task")
		}
		view = newTaskView(task, module.ExternalID)
		return nil
	})
	return view, err
}

// DeleteTask deletes a task, closes the gap it leaves in its module and
// returns the external id of the task.
func (s *Service) DeleteTask(ctx context.Context, user, taskID string) (string, error) {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		task, module, _, err := resolveTask(tx, user, taskID, true)
		if err != nil {
			return err
		}
		return ordering.RemoveAndCompact(tx, ordering.Tasks.In(module.ID), task.ID, task.Order)
	})
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"task": taskID, "user": user}).Debug("deleted task")
	return taskID, nil
}

// MoveTask reorders a task within its module or moves it to another module
// of the same plan.
func (s *Service) MoveTask(ctx context.Context, user, taskID string, in MoveTaskInput) (TaskView, error) {
	var view TaskView
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		task, module, plan, err := resolveTask(tx, user, taskID, true)
		if err != nil {
			return err
		}

		target := module
		if in.TargetModuleID != "" && in.TargetModuleID != module.ExternalID {
			// The plan of the task is already locked and the target has to
			// live in that same plan, so no further lock is needed.
			var targetPlan *models.Plan
			target, targetPlan, err = resolveModule(tx, user, in.TargetModuleID, false)
			if err != nil {
				return err
			}
			if targetPlan.ID != plan.ID {
				return errdefs.InvalidRange("tasks can only be moved between modules of the same plan")
			}
		}

		source := ordering.Tasks.In(module.ID)
		dest := ordering.Tasks.In(target.ID)
		n, err := ordering.Count(tx, dest)
		if err != nil {
			return err
		}
		if target.ID == module.ID {
			if in.NewOrder == nil {
				return errdefs.InvalidRequest("newOrder is required to reorder a task within its module")
			}
			if *in.NewOrder < 1 || *in.NewOrder > n {
				return errdefs.InvalidRange("order must be between 1 and %d", n)
			}
		} else if in.NewOrder != nil && (*in.NewOrder < 1 || *in.NewOrder > n+1) {
			return errdefs.InvalidRange("order must be between 1 and %d", n+1)
		}

		order, err := ordering.Move(tx, source, task.Order, dest, in.NewOrder, task.ID)
		if err != nil {
			return err
		}
		if err := tx.Take(task, task.ID).Error; err != nil {
			return errors.Wrap(err, "failed to reload task")
		}
		view = newTaskView(task, target.ExternalID)

		log.WithFields(log.Fields{
			"task":  taskID,
			"from":  module.ExternalID,
			"to":    target.ExternalID,
			"order": order,
		}).Debug("moved task")
		return nil
	})
	return view, err
}
