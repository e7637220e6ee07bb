package planner

import (
	"context"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/internal/models"
	"github.com/priyxstudio/pathway/ordering"
)

type CreateModuleInput struct {
	Title       string
	Description *string
	Expanded    bool
}

// UpdateModuleInput is a partial update; nil and unset fields are left alone.
type UpdateModuleInput struct {
	Title       *string
	Description Nullable[string]
	Expanded    *bool
}

// CreateModule appends a new module to the end of a plan.
func (s *Service) CreateModule(ctx context.Context, user, planID string, in CreateModuleInput) (ModuleView, error) {
	title, err := validTitle(in.Title)
	if err != nil {
		return ModuleView{}, err
	}
	var view ModuleView
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		plan, err := resolvePlan(tx, user, planID, true)
		if err != nil {
			return err
		}
		order, err := ordering.Append(tx, ordering.Modules.In(plan.ID))
		if err != nil {
			return err
		}
		module := models.LearningModule{
			ExternalID:  uuid.NewString(),
			PlanID:      plan.ID,
			Order:       order,
			Title:       title,
			Description: in.Description,
			Expanded:    in.Expanded,
		}
		if err := tx.Create(&module).Error; err != nil {
			return errors.Wrap(err, "failed to create module")
		}
		view = newModuleView(&module, plan.ExternalID)
		return nil
	})
	return view, err
}

// UpdateModule applies a partial update to the non-order fields of a module.
func (s *Service) UpdateModule(ctx context.Context, user, moduleID string, in UpdateModuleInput) (ModuleView, error) {
	var view ModuleView
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		module, plan, err := resolveModule(tx, user, moduleID, false)
		if err != nil {
			return err
		}

		var columns []string
		if in.Title != nil {
			if module.Title, err = validTitle(*in.Title); err != nil {
				return err
			}
			columns = append(columns, "title")
		}
		if in.Description.Set {
			module.Description = in.Description.Value
			columns = append(columns, "description")
		}
		if in.Expanded != nil {
			module.Expanded = *in.Expanded
			columns = append(columns, "expanded")
		}
		if err := saveColumns(tx, module, columns); err != nil {
			return errors.Wrap(err, "failed to update module")
		}
		view = newModuleView(module, plan.ExternalID)
		return nil
	})
	return view, err
}

// DeleteModule deletes a module and its tasks, closes the gap it leaves in
// the plan and returns the external id of the module.
func (s *Service) DeleteModule(ctx context.Context, user, moduleID string) (string, error) {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		module, plan, err := resolveModule(tx, user, moduleID, true)
		if err != nil {
			return err
		}
		return ordering.RemoveAndCompact(tx, ordering.Modules.In(plan.ID), module.ID, module.Order)
	})
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"module": moduleID, "user": user}).Debug("deleted module")
	return moduleID, nil
}

// ReorderModule moves a module to newOrder within its plan. newOrder must be
// between 1 and the number of modules in the plan.
func (s *Service) ReorderModule(ctx context.Context, user, moduleID string, newOrder int) (ModuleView, error) {
	var view ModuleView
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		module, plan, err := resolveModule(tx, user, moduleID, true)
		if err != nil {
			return err
		}
		scope := ordering.Modules.In(plan.ID)
		n, err := ordering.Count(tx, scope)
		if err != nil {
			return err
		}
		if newOrder < 1 || newOrder > n {
			return errdefs.InvalidRange("order must be between 1 and %d", n)
		}
		if err := ordering.Reorder(tx, scope, module.ID, module.Order, newOrder); err != nil {
			return err
		}
		if err := tx.Take(module, module.ID).Error; err != nil {
			return errors.Wrap(err, "failed to reload module")
		}
		view = newModuleView(module, plan.ExternalID)
		return nil
	})
	return view, err
}
