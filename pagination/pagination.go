// Package pagination implements keyset pagination over a sort field with the
// row id as a tie-break, so that pages never overlap or skip rows even when
// many rows share a sort value.
package pagination

import (
	"strings"

	"github.com/iancoleman/strcase"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/internal/errdefs"
)

// Direction is the sort direction of a listing.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Field is a sortable field exposed to clients under Name.
type Field struct {
	Name string
	// Column defaults to the snake case form of Name.
	Column string
	Kind   Kind
}

func (f Field) column() string {
	if f.Column != "" {
		return f.Column
	}
	return strcase.ToSnake(f.Name)
}

// Schema lists the fields one listing may be sorted on.
type Schema struct {
	Fields           []Field
	DefaultField     string
	DefaultDirection Direction
}

// Bounds limits the page size a client may ask for.
type Bounds struct {
	Default int
	Max     int
}

// Request is a page request as received from a client.
type Request struct {
	Cursor    string `form:"cursor" json:"cursor"`
	Limit     *int   `form:"limit" json:"limit"`
	SortField string `form:"sortField" json:"sortField"`
	Direction string `form:"sortDirection" json:"sortDirection"`
}

// Query is a validated page request.
type Query struct {
	Field     Field
	Direction Direction
	Limit     int
	After     *Cursor
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	HasNext    bool   `json:"hasNext"`
	NextCursor string `json:"nextCursor,omitempty"`
}

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Resolve validates a request against the schema.
func (s Schema) Resolve(req Request, bounds Bounds) (Query, error) {
	name := req.SortField
	if name == "" {
		name = s.DefaultField
	}
	field, ok := s.field(name)
	if !ok {
		return Query{}, errdefs.InvalidRange("cannot sort by %q", name)
	}

	dir := s.DefaultDirection
	switch strings.ToLower(req.Direction) {
	case "":
	case string(Asc):
		dir = Asc
	case string(Desc):
		dir = Desc
	default:
		return Query{}, errdefs.InvalidRange("sort direction must be %q or %q", Asc, Desc)
	}

	limit := bounds.Default
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit < 1 || limit > bounds.Max {
		return Query{}, errdefs.InvalidRange("limit must be between 1 and %d", bounds.Max)
	}

	q := Query{Field: field, Direction: dir, Limit: limit}
	if req.Cursor != "" {
		c, err := Decode(req.Cursor)
		if err != nil {
			return Query{}, err
		}
		if c.Kind != field.Kind {
			return Query{}, errdefs.InvalidCursor("the cursor does not match the sort field")
		}
		q.After = &c
	}
	return q, nil
}

// Apply adds the keyset condition, ordering and limit to db. One extra row is
// fetched to learn whether another page exists.
func (q Query) Apply(db *gorm.DB) *gorm.DB {
	col := q.Field.column()
	op, dir := ">", "ASC"
	if q.Direction == Desc {
		op, dir = "<", "DESC"
	}
	if q.After != nil {
		// Decode already checked the value, so this cannot fail.
		v, _ := q.After.value()
		db = db.Where("("+col+" "+op+" ? OR ("+col+" = ? AND id "+op+" ?))", v, v, q.After.ID)
	}
	return db.Order(col + " " + dir).Order("id " + dir).Limit(q.Limit + 1)
}

// Build trims rows fetched through Apply down to a page. key returns the
// sort value and id of a row.
func Build[T any](rows []T, q Query, key func(T) (interface{}, uint)) (Page[T], error) {
	if len(rows) <= q.Limit {
		if rows == nil {
			rows = []T{}
		}
		return Page[T]{Items: rows}, nil
	}
	rows = rows[:q.Limit]
	value, id := key(rows[len(rows)-1])
	c, err := NewCursor(q.Field.Kind, value, id)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: rows, HasNext: true, NextCursor: c.Encode()}, nil
}

// Map converts the items of a page, keeping its cursor.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{Items: items, HasNext: p.HasNext, NextCursor: p.NextCursor}
}
