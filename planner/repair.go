package planner

import (
	"context"

	"emperror.dev/errors"
	"github.com/apex/log"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/ordering"
)

// RepairResult describes one scope whose order sequence was broken.
type RepairResult struct {
	Scope   string
	Changed int64
}

// Repair checks the order sequence of every plan and module and renumbers the
// broken ones. With dryRun set nothing is written and Changed is always 0.
func (s *Service) Repair(ctx context.Context, dryRun bool) ([]RepairResult, error) {
	var results []RepairResult
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		for _, c := range []ordering.Collection{ordering.Modules, ordering.Tasks} {
			parents, err := c.Parents(tx)
			if err != nil {
				return err
			}
			for _, id := range parents {
				scope := c.In(id)
				err := ordering.Verify(tx, scope)
				if err == nil {
					continue
				}
				if !errors.Is(err, ordering.ErrBrokenSequence) {
					return err
				}
				log.WithFields(log.Fields{"scope": scope.String(), "dry_run": dryRun}).WithError(err).Warn("found broken order sequence")

				result := RepairResult{Scope: scope.String()}
				if !dryRun {
					if result.Changed, err = ordering.Normalize(tx, scope); err != nil {
						return err
					}
				}
				results = append(results, result)
			}
		}
		return nil
	})
	return results, err
}
