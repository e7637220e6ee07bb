package planner

import (
	"emperror.dev/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/internal/models"
)

// findByExternalID loads a row by its external id. Identifiers that are not
// UUIDs cannot exist and are reported as missing without a query. Ids are
// stored in canonical lower case form.
func findByExternalID[T any](tx *gorm.DB, externalID, kind string) (*T, error) {
	id, err := uuid.Parse(externalID)
	if err != nil {
		return nil, errdefs.NotFound("%s not found", kind)
	}
	var row T
	if err := tx.Where("external_id = ?", id.String()).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errdefs.NotFound("%s not found", kind)
		}
		return nil, errors.Wrapf(err, "failed to load %s", kind)
	}
	return &row, nil
}

// forUpdate locks the selected rows until the transaction ends. sqlite runs
// on a single connection and has no row locks, so nothing is added there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// authorize checks that user owns plan.
func authorize(plan *models.Plan, user string) error {
	if plan.UserID != user {
		return errdefs.AccessDenied("you do not have access to this plan")
	}
	return nil
}

// lockPlan loads the plan by numeric id and, when lock is set, holds its row
// lock for the rest of the transaction. Every order mutation below a plan
// takes this lock first, which serialises them per plan.
func lockPlan(tx *gorm.DB, id uint, lock bool) (*models.Plan, error) {
	q := tx
	if lock {
		q = forUpdate(tx)
	}
	var plan models.Plan
	if err := q.Take(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errdefs.NotFound("plan not found")
		}
		return nil, errors.Wrap(err, "failed to load plan")
	}
	return &plan, nil
}

// resolvePlan loads the plan with the given external id and checks that user
// owns it.
func resolvePlan(tx *gorm.DB, user, externalID string, lock bool) (*models.Plan, error) {
	plan, err := findByExternalID[models.Plan](tx, externalID, "plan")
	if err != nil {
		return nil, err
	}
	if err := authorize(plan, user); err != nil {
		return nil, err
	}
	if lock {
		return lockPlan(tx, plan.ID, true)
	}
	return plan, nil
}

// resolveModule loads a module and its plan and checks that user owns the
// plan. When lock is set the module is read again after the plan lock is held
// so that its order reflects every committed change.
func resolveModule(tx *gorm.DB, user, externalID string, lock bool) (*models.LearningModule, *models.Plan, error) {
	module, err := findByExternalID[models.LearningModule](tx, externalID, "module")
	if err != nil {
		return nil, nil, err
	}
	plan, err := lockPlan(tx, module.PlanID, lock)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(plan, user); err != nil {
		return nil, nil, err
	}
	if lock {
		if err := tx.Take(module, module.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, errdefs.NotFound("module not found")
			}
			return nil, nil, errors.Wrap(err, "failed to reload module")
		}
	}
	return module, plan, nil
}

// resolveTask loads a task with its module and plan and checks that user owns
// the plan. Tasks only ever move between modules of the same plan, so the
// plan found before locking is still the right one afterwards.
func resolveTask(tx *gorm.DB, user, externalID string, lock bool) (*models.Task, *models.LearningModule, *models.Plan, error) {
	task, err := findByExternalID[models.Task](tx, externalID, "task")
	if err != nil {
		return nil, nil, nil, err
	}
	var module models.LearningModule
	if err := tx.Take(&module, task.ModuleID).Error; err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to load module")
	}
	plan, err := lockPlan(tx, module.PlanID, lock)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := authorize(plan, user); err != nil {
		return nil, nil, nil, err
	}
	if lock {
		if err := tx.Take(task, task.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, nil, errdefs.NotFound("task not found")
			}
			return nil, nil, nil, errors.Wrap(err, "failed to reload task")
		}
		if task.ModuleID != module.ID {
			var current models.LearningModule
			if err := tx.Take(&current, task.ModuleID).Error; err != nil {
				return nil, nil, nil, errors.Wrap(err, "failed to reload module")
			}
			module = current
		}
	}
	return task, &module, plan, nil
}
