package pagination

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/internal/database"
	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/internal/models"
)

func init() {
	log.SetHandler(discard.Default)
}

var planSchema = Schema{
	Fields: []Field{
		{Name: "createdAt", Kind: KindTime},
		{Name: "title", Kind: KindString},
		{Name: "order", Column: "id", Kind: KindInt},
	},
	DefaultField:     "createdAt",
	DefaultDirection: Desc,
}

var bounds = Bounds{Default: 20, Max: 100}

func ptr(v int) *int {
	return &v
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(context.Background(), config.DatabaseConfiguration{
		Driver: "sqlite",
		Dsn:    filepath.Join(t.TempDir(), "pagination.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// seedPlans creates n plans. Titles repeat every three rows and creation
// times repeat every two, so both fields have plenty of ties.
func seedPlans(t *testing.T, db *gorm.DB, n int) []models.Plan {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	plans := make([]models.Plan, 0, n)
	for i := 0; i < n; i++ {
		p := models.Plan{
			ExternalID: uuid.NewString(),
			UserID:     "user",
			Status:     models.PlanStatusActive,
			Title:      fmt.Sprintf("plan %d", i%3),
			CreatedAt:  base.Add(time.Duration(i/2) * time.Minute),
		}
		require.NoError(t, db.Create(&p).Error)
		plans = append(plans, p)
	}
	return plans
}

func planKey(field string) func(models.Plan) (interface{}, uint) {
	return func(p models.Plan) (interface{}, uint) {
		switch field {
		case "title":
			return p.Title, p.ID
		case "order":
			return int(p.ID), p.ID
		default:
			return p.CreatedAt, p.ID
		}
	}
}

// collect follows cursors until the last page and returns the ids visited.
func collect(t *testing.T, db *gorm.DB, req Request) []uint {
	t.Helper()
	var ids []uint
	for pages := 0; ; pages++ {
		require.Less(t, pages, 100, "pagination did not terminate")

		q, err := planSchema.Resolve(req, bounds)
		require.NoError(t, err)

		var rows []models.Plan
		require.NoError(t, q.Apply(db.Model(&models.Plan{})).Find(&rows).Error)

		page, err := Build(rows, q, planKey(q.Field.Name))
		require.NoError(t, err)
		require.LessOrEqual(t, len(page.Items), q.Limit)
		for _, p := range page.Items {
			ids = append(ids, p.ID)
		}
		if !page.HasNext {
			assert.Empty(t, page.NextCursor)
			return ids
		}
		require.NotEmpty(t, page.NextCursor)
		req.Cursor = page.NextCursor
	}
}

func TestCursorRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 123456000, time.UTC)
	cases := []struct {
		kind  Kind
		value interface{}
	}{
		{KindTime, now},
		{KindString, "a title, with \"quotes\" and ünïcode"},
		{KindString, ""},
		{KindInt, 42},
	}
	for _, tc := range cases {
		c, err := NewCursor(tc.kind, tc.value, 17)
		require.NoError(t, err)

		decoded, err := Decode(c.Encode())
		require.NoError(t, err)
		assert.Equal(t, c, decoded)

		v, err := decoded.value()
		require.NoError(t, err)
		assert.Equal(t, tc.value, v)
	}
}

func TestNewCursorRejectsKindMismatch(t *testing.T) {
	_, err := NewCursor(KindInt, "nope", 1)
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedCursors(t *testing.T) {
	bad := []string{
		"!!!",
		"bm90IGpzb24",
		Cursor{Kind: "float", Value: "1.5", ID: 1}.Encode(),
		Cursor{Kind: KindTime, Value: "yesterday", ID: 1}.Encode(),
		Cursor{Kind: KindInt, Value: "x", ID: 1}.Encode(),
	}
	for _, token := range bad {
		_, err := Decode(token)
		assert.Equal(t, errdefs.CodeInvalidCursor, errdefs.CodeOf(err), token)
	}
}

func TestResolve(t *testing.T) {
	q, err := planSchema.Resolve(Request{}, bounds)
	require.NoError(t, err)
	assert.Equal(t, "createdAt", q.Field.Name)
	assert.Equal(t, "created_at", q.Field.column())
	assert.Equal(t, Desc, q.Direction)
	assert.Equal(t, 20, q.Limit)
	assert.Nil(t, q.After)

	q, err = planSchema.Resolve(Request{SortField: "title", Direction: "ASC", Limit: ptr(100)}, bounds)
	require.NoError(t, err)
	assert.Equal(t, Asc, q.Direction)
	assert.Equal(t, 100, q.Limit)

	invalid := map[Request]errdefs.Code{
		{SortField: "secret"}:   errdefs.CodeInvalidRange,
		{Direction: "sideways"}: errdefs.CodeInvalidRange,
		{Limit: ptr(0)}:         errdefs.CodeInvalidRange,
		{Limit: ptr(-1)}:        errdefs.CodeInvalidRange,
		{Limit: ptr(101)}:       errdefs.CodeInvalidRange,
		{Cursor: "%%%"}:         errdefs.CodeInvalidCursor,
		{SortField: "title", Cursor: Cursor{Kind: KindTime, Value: time.Now().UTC().Format(time.RFC3339Nano), ID: 1}.Encode()}: errdefs.CodeInvalidCursor,
	}
	for req, code := range invalid {
		_, err := planSchema.Resolve(req, bounds)
		assert.Equal(t, code, errdefs.CodeOf(err), "%+v", req)
	}
}

func TestBuildWithoutNextPage(t *testing.T) {
	q := Query{Field: Field{Name: "order", Kind: KindInt}, Limit: 3}

	page, err := Build([]int(nil), q, func(i int) (interface{}, uint) { return i, uint(i) })
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.False(t, page.HasNext)

	page, err = Build([]int{1, 2, 3}, q, func(i int) (interface{}, uint) { return i, uint(i) })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, page.Items)
	assert.False(t, page.HasNext)
	assert.Empty(t, page.NextCursor)

	page, err = Build([]int{1, 2, 3, 4}, q, func(i int) (interface{}, uint) { return i, uint(i) })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, page.Items)
	assert.True(t, page.HasNext)

	c, err := Decode(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, Cursor{Kind: KindInt, Value: "3", ID: 3}, c)
}

func TestPaginationIsCompleteForEveryLimit(t *testing.T) {
	db := openTestDB(t)
	seedPlans(t, db, 11)

	for _, field := range []string{"createdAt", "title", "order"} {
		for _, dir := range []Direction{Asc, Desc} {
			q, err := planSchema.Resolve(Request{SortField: field, Direction: string(dir), Limit: ptr(100)}, bounds)
			require.NoError(t, err)
			var all []models.Plan
			require.NoError(t, q.Apply(db.Model(&models.Plan{})).Find(&all).Error)
			var expected []uint
			for _, p := range all {
				expected = append(expected, p.ID)
			}
			require.Len(t, expected, 11)

			for limit := 1; limit <= 12; limit++ {
				got := collect(t, db, Request{SortField: field, Direction: string(dir), Limit: ptr(limit)})
				assert.Equal(t, expected, got, "field=%s dir=%s limit=%d", field, dir, limit)
			}
		}
	}
}

func TestPaginationBreaksTiesById(t *testing.T) {
	db := openTestDB(t)
	same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		p := models.Plan{ExternalID: uuid.NewString(), UserID: "user", Status: models.PlanStatusActive, Title: "same", CreatedAt: same}
		require.NoError(t, db.Create(&p).Error)
	}

	got := collect(t, db, Request{SortField: "createdAt", Direction: "asc", Limit: ptr(2)})
	assert.Equal(t, []uint{1, 2, 3, 4, 5, 6, 7}, got)

	got = collect(t, db, Request{SortField: "title", Direction: "desc", Limit: ptr(3)})
	assert.Equal(t, []uint{7, 6, 5, 4, 3, 2, 1}, got)
}

func TestMap(t *testing.T) {
	p := Page[int]{Items: []int{1, 2}, HasNext: true, NextCursor: "abc"}
	out := Map(p, func(i int) string { return fmt.Sprint(i * 2) })
	assert.Equal(t, Page[string]{Items: []string{"2", "4"}, HasNext: true, NextCursor: "abc"}, out)
}
