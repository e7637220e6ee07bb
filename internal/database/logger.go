package database

import (
	"context"
	"fmt"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration above which a query is logged as a
// warning regardless of the log level.
const slowQueryThreshold = 200 * time.Millisecond

// gormLogger sends gorm's output through apex/log so that queries show up
// alongside the rest of the application logs.
type gormLogger struct {
	level logger.LogLevel
}

func newLogger() logger.Interface {
	return &gormLogger{level: logger.Warn}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		log.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := log.WithFields(log.Fields{"elapsed": elapsed.String(), "rows": rows, "sql": sql})
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		entry.WithError(err).Error("database query failed")
	case elapsed > slowQueryThreshold && l.level >= logger.Warn:
		entry.Warn("slow database query")
	default:
		// Individual queries are only interesting while debugging.
		entry.Debug("database query")
	}
}
