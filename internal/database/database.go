// Package database opens the relational store backing plans, modules and
// tasks and keeps a process wide handle to it.
package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/cenkalti/backoff/v4"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/internal/models"
)

var (
	mu sync.RWMutex
	db *gorm.DB
)

// sqlitePragmas are applied to every sqlite connection. foreign_keys is
// required for parent deletes to cascade to their children.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
}

// Now returns the current time as it is persisted: UTC, truncated to
// microseconds, so that values read back compare equal on every driver.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Initialize opens the configured database, migrates the schema and stores
// the handle for Instance.
func Initialize(ctx context.Context, cfg config.DatabaseConfiguration) error {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	if err := Migrate(conn); err != nil {
		_ = Close(conn)
		return err
	}
	mu.Lock()
	db = conn
	mu.Unlock()
	return nil
}

// Instance returns the handle created by Initialize. It panics if the
// database has not been initialized since nothing can work without it.
func Instance() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	if db == nil {
		panic("database: Instance called before Initialize")
	}
	return db
}

// Open connects to the database described by cfg and waits, with exponential
// backoff, until it answers a ping.
func Open(ctx context.Context, cfg config.DatabaseConfiguration) (*gorm.DB, error) {
	var dialector gorm.Dialector
	maxOpen := cfg.MaxOpenConnections
	if cfg.SqliteDriver() {
		dsn, err := sqliteDsn(cfg.Dsn)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
		// sqlite allows a single writer, so all access is funneled through one
		// connection rather than failing with SQLITE_BUSY.
		maxOpen = 1
	} else {
		dialector = postgres.Open(cfg.Dsn)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newLogger(),
		NowFunc: Now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "database: failed to open connection")
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, errors.Wrap(err, "database: failed to access connection pool")
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if cfg.MaxIdleConnections > 0 {
		idle := cfg.MaxIdleConnections
		if maxOpen > 0 && idle > maxOpen {
			idle = maxOpen
		}
		sqlDB.SetMaxIdleConns(idle)
	}

	attempt := 0
	ping := func() error {
		attempt++
		err := sqlDB.PingContext(ctx)
		if err != nil {
			log.WithField("attempt", attempt).WithError(err).Warn("database is not reachable yet")
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.ConnectRetries), ctx)
	if err := backoff.Retry(ping, policy); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "database: failed to reach database")
	}

	log.WithFields(log.Fields{"driver": cfg.Driver, "max_open": maxOpen}).Debug("opened database connection")
	return conn, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.Plan{}, &models.LearningModule{}, &models.Task{}); err != nil {
		return errors.Wrap(err, "database: failed to migrate schema")
	}
	return nil
}

// Close releases the connection pool behind conn.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(sqlDB.Close())
}

// sqliteDsn appends the connection pragmas to a sqlite file path and makes
// sure the directory holding the database exists.
func sqliteDsn(dsn string) (string, error) {
	path := dsn
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "file:")
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", errors.Wrap(err, "database: failed to create data directory")
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(sqlitePragmas, "&"), nil
}
