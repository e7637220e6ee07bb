// Package ordering maintains dense, 1-based order sequences of rows that
// share a parent. Every function operates on a caller supplied transaction
// and never opens one of its own, so a failure anywhere aborts the whole
// enclosing operation and no partial shift is ever committed.
package ordering

import (
	"fmt"

	"emperror.dev/errors"
	"gorm.io/gorm"
)

const (
	// Column is the name of the order column on every ordered table.
	Column = "order_index"

	// TouchColumn is stamped whenever a row is explicitly placed.
	TouchColumn = "updated_at"
)

var (
	// ErrRowMissing is returned when the row being removed or moved is not
	// present in the scope it was expected in.
	ErrRowMissing = errors.New("ordering: row is not present in scope")

	// ErrBrokenSequence is returned by Verify when the orders in a scope are
	// not exactly 1..N.
	ErrBrokenSequence = errors.New("ordering: order sequence is not dense")
)

// Collection describes an ordered table and the column referencing the
// parent row.
type Collection struct {
	Table  string
	Parent string
}

var (
	Modules = Collection{Table: "learning_modules", Parent: "plan_id"}
	Tasks   = Collection{Table: "tasks", Parent: "module_id"}
)

// In returns the scope holding the children of parentID.
func (c Collection) In(parentID uint) Scope {
	return Scope{Collection: c, ParentID: parentID}
}

// Parents returns the ids of every parent that has at least one child.
func (c Collection) Parents(tx *gorm.DB) ([]uint, error) {
	var ids []uint
	if err := tx.Table(c.Table).Distinct(c.Parent).Order(c.Parent).Pluck(c.Parent, &ids).Error; err != nil {
		return nil, errors.Wrapf(err, "ordering: failed to list parents of %s", c.Table)
	}
	return ids, nil
}

// Scope is the set of rows of a collection that share one parent.
type Scope struct {
	Collection
	ParentID uint
}

func (s Scope) String() string {
	return fmt.Sprintf("%s[%s=%d]", s.Table, s.Parent, s.ParentID)
}

func (s Scope) rows(tx *gorm.DB) *gorm.DB {
	return tx.Table(s.Table).Where(s.Parent+" = ?", s.ParentID)
}

// shift adds delta to the order of every row in the scope matching cond.
func (s Scope) shift(tx *gorm.DB, delta int, cond string, args ...interface{}) error {
	err := s.rows(tx).
		Where(cond, args...).
		UpdateColumn(Column, gorm.Expr(Column+" + ?", delta)).Error
	if err != nil {
		return errors.Wrapf(err, "ordering: failed to shift %s", s)
	}
	return nil
}

// place sets the order of a single row, optionally moving it to another
// parent at the same time. Rows that only shift to make room keep their
// updated_at.
func (s Scope) place(tx *gorm.DB, id uint, values map[string]interface{}) error {
	values[TouchColumn] = tx.NowFunc()
	res := s.rows(tx).Where("id = ?", id).UpdateColumns(values)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "ordering: failed to place row %d in %s", id, s)
	}
	if res.RowsAffected != 1 {
		return errors.WithStack(ErrRowMissing)
	}
	return nil
}

// Count returns the number of rows in the scope.
func Count(tx *gorm.DB, s Scope) (int, error) {
	var n int64
	if err := s.rows(tx).Count(&n).Error; err != nil {
		return 0, errors.Wrapf(err, "ordering: failed to count %s", s)
	}
	return int(n), nil
}

// Append returns the order a new row should be created with: one past the
// current maximum. Existing rows are not touched.
func Append(tx *gorm.DB, s Scope) (int, error) {
	var max int
	if err := s.rows(tx).Select("COALESCE(MAX(" + Column + "), 0)").Scan(&max).Error; err != nil {
		return 0, errors.Wrapf(err, "ordering: failed to read maximum order of %s", s)
	}
	return max + 1, nil
}

// RemoveAndCompact deletes the row and closes the gap it leaves by shifting
// every later row down by one.
func RemoveAndCompact(tx *gorm.DB, s Scope, id uint, removedOrder int) error {
	res := tx.Exec("DELETE FROM "+s.Table+" WHERE id = ? AND "+s.Parent+" = ?", id, s.ParentID)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "ordering: failed to delete row %d from %s", id, s)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(ErrRowMissing)
	}
	return s.shift(tx, -1, Column+" > ?", removedOrder)
}

// Reorder moves a row from current to target within the scope. Callers must
// have checked that target is within [1, N].
func Reorder(tx *gorm.DB, s Scope, id uint, current, target int) error {
	if current == target {
		return nil
	}
	var err error
	if current < target {
		err = s.shift(tx, -1, Column+" > ? AND "+Column+" <= ?", current, target)
	} else {
		err = s.shift(tx, 1, Column+" >= ? AND "+Column+" < ?", target, current)
	}
	if err != nil {
		return err
	}
	return s.place(tx, id, map[string]interface{}{Column: target})
}

// Move transfers a row from source to target. A nil targetOrder appends the
// row to the end of target. When both scopes are the same the call is a
// plain Reorder, with a nil targetOrder meaning the last position. The
// resolved order of the row is returned.
func Move(tx *gorm.DB, source Scope, sourceOrder int, target Scope, targetOrder *int, id uint) (int, error) {
	if source.Table != target.Table || source.Parent != target.Parent {
		return 0, errors.Errorf("ordering: cannot move a row from %s to %s", source, target)
	}

	if source == target {
		dest := 0
		if targetOrder != nil {
			dest = *targetOrder
		} else {
			n, err := Count(tx, source)
			if err != nil {
				return 0, err
			}
			dest = n
		}
		if err := Reorder(tx, source, id, sourceOrder, dest); err != nil {
			return 0, err
		}
		return dest, nil
	}

	// The row is treated as already gone from source; it is still in place
	// but sits outside the shifted range.
	if err := source.shift(tx, -1, Column+" > ?", sourceOrder); err != nil {
		return 0, err
	}

	var dest int
	if targetOrder == nil {
		var err error
		if dest, err = Append(tx, target); err != nil {
			return 0, err
		}
	} else {
		dest = *targetOrder
		if err := target.shift(tx, 1, Column+" >= ?", dest); err != nil {
			return 0, err
		}
	}

	err := source.place(tx, id, map[string]interface{}{
		target.Parent: target.ParentID,
		Column:        dest,
	})
	if err != nil {
		return 0, err
	}
	return dest, nil
}

// Orders returns the order values of the scope in ascending order.
func Orders(tx *gorm.DB, s Scope) ([]int, error) {
	var orders []int
	if err := s.rows(tx).Order(Column + " ASC").Order("id ASC").Pluck(Column, &orders).Error; err != nil {
		return nil, errors.Wrapf(err, "ordering: failed to read orders of %s", s)
	}
	return orders, nil
}

// Verify returns ErrBrokenSequence unless the orders of the scope are
// exactly 1..N.
func Verify(tx *gorm.DB, s Scope) error {
	orders, err := Orders(tx, s)
	if err != nil {
		return err
	}
	for i, o := range orders {
		if o != i+1 {
			return errors.WithDetails(errors.WithStack(ErrBrokenSequence), "scope", s.String(), "position", i+1, "order", o)
		}
	}
	return nil
}

// Normalize renumbers the scope to 1..N keeping the existing relative order,
// with the row id breaking ties. It returns the number of rows that changed.
func Normalize(tx *gorm.DB, s Scope) (int64, error) {
	stmt := "UPDATE " + s.Table + " SET " + Column + " = ranked.rn FROM (" +
		"SELECT id, ROW_NUMBER() OVER (ORDER BY " + Column + ", id) AS rn FROM " + s.Table + " WHERE " + s.Parent + " = ?" +
		") AS ranked WHERE " + s.Table + ".id = ranked.id AND " + s.Table + "." + Column + " <> ranked.rn"
	res := tx.Exec(stmt, s.ParentID)
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "ordering: failed to normalize %s", s)
	}
	return res.RowsAffected, nil
}
