// Package planner implements the plan, module and task operations. Every
// mutating operation runs in exactly one database transaction: identifiers are
// resolved and ownership is checked inside it, the ordering engine is invoked,
// and the updated entity is returned once the transaction has committed.
package planner

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/pagination"
)

const maxTitleLength = 200

// Service exposes the planner operations. It holds no state besides the
// database handle and is safe for concurrent use.
type Service struct {
	db     *gorm.DB
	bounds pagination.Bounds
}

// NewService returns a service backed by db. bounds limits the page sizes of
// listings.
func NewService(db *gorm.DB, bounds pagination.Bounds) *Service {
	return &Service{db: db, bounds: bounds}
}

// transaction runs fn in a single transaction bound to ctx. A cancelled
// context rolls the transaction back. Errors that were not given a code
// inside fn are reported as OperationFailed.
func (s *Service) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return errdefs.Classify(s.db.WithContext(ctx).Transaction(fn))
}

func (s *Service) read(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Nullable is an optional field of a partial update that can also be
// cleared. Set is false when the field was absent from the request; a set
// field with a nil Value clears the stored value.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a set Nullable that clears the stored value.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errdefs.InvalidRequest("title must not be empty")
	}
	if len([]rune(title)) > maxTitleLength {
		return "", errdefs.InvalidRequest("title must be at most %d characters", maxTitleLength)
	}
	return title, nil
}
