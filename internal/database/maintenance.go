package database

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Optimize refreshes the planner statistics of the database. Ranged order
// updates lean on the (parent, order_index) indexes, which the query planner
// only picks reliably with fresh statistics.
func Optimize(ctx context.Context, conn *gorm.DB) error {
	stmt := "ANALYZE"
	if conn.Dialector.Name() == "sqlite" {
		stmt = "PRAGMA optimize"
	}
	if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
		return errors.Wrap(err, "database: maintenance failed")
	}
	return nil
}

// NewMaintenanceScheduler returns a scheduler that runs Optimize every
// interval. The scheduler is not started.
func NewMaintenanceScheduler(ctx context.Context, conn *gorm.DB, interval time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, errors.Wrap(err, "database: failed to create scheduler")
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			start := time.Now()
			if err := Optimize(ctx, conn); err != nil {
				log.WithError(err).Warn("database maintenance failed")
				return
			}
			log.WithField("elapsed", time.Since(start).String()).Debug("database maintenance completed")
		}),
		gocron.WithName("database-maintenance"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, errors.Wrap(err, "database: failed to schedule maintenance")
	}
	return s, nil
}
