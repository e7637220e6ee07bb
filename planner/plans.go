package planner

import (
	"context"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/internal/models"
)

type CreatePlanInput struct {
	Title       string
	Description *string
}

// UpdatePlanInput is a partial update; nil and unset fields are left alone.
type UpdatePlanInput struct {
	Title       *string
	Description Nullable[string]
	Status      *models.PlanStatus
}

// CreatePlan creates an empty, active plan owned by user.
func (s *Service) CreatePlan(ctx context.Context, user string, in CreatePlanInput) (PlanView, error) {
	title, err := validTitle(in.Title)
	if err != nil {
		return PlanView{}, err
	}
	plan := models.Plan{
		ExternalID:  uuid.NewString(),
		UserID:      user,
		Status:      models.PlanStatusActive,
		Title:       title,
		Description: in.Description,
	}
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return errors.Wrap(err, "failed to create plan")
		}
		return nil
	})
	if err != nil {
		return PlanView{}, err
	}
	log.WithFields(log.Fields{"plan": plan.ExternalID, "user": user}).Debug("created plan")
	return newPlanView(&plan), nil
}

// UpdatePlan applies a partial update to a plan.
func (s *Service) UpdatePlan(ctx context.Context, user, planID string, in UpdatePlanInput) (PlanView, error) {
	var view PlanView
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		plan, err := resolvePlan(tx, user, planID, true)
		if err != nil {
			return err
		}

		var columns []string
		if in.Title != nil {
			if plan.Title, err = validTitle(*in.Title); err != nil {
				return err
			}
			columns = append(columns, "title")
		}
		if in.Description.Set {
			plan.Description = in.Description.Value
			columns = append(columns, "description")
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return errdefs.InvalidRequest("status must be %q or %q", models.PlanStatusActive, models.PlanStatusArchived)
			}
			plan.Status = *in.Status
			columns = append(columns, "status")
		}
		if err := saveColumns(tx, plan, columns); err != nil {
			return errors.Wrap(err, "failed to update plan")
		}
		view = newPlanView(plan)
		return nil
	})
	return view, err
}

// DeletePlan deletes a plan together with its modules and tasks and returns
// the external id of the plan.
func (s *Service) DeletePlan(ctx context.Context, user, planID string) (string, error) {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		plan, err := resolvePlan(tx, user, planID, true)
		if err != nil {
			return err
		}
		// Modules and tasks are removed by the cascading foreign keys.
		if err := tx.Delete(plan).Error; err != nil {
			return errors.Wrap(err, "failed to delete plan")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"plan": planID, "user": user}).Debug("deleted plan")
	return planID, nil
}

// saveColumns writes the named columns of model along with its update time.
// Nothing is written when no column changed.
func saveColumns(tx *gorm.DB, model interface{}, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	return tx.Model(model).Select(append(columns, "updated_at")).Updates(model).Error
}
