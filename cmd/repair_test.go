package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/internal/database"
	"github.com/priyxstudio/pathway/internal/models"
	"github.com/priyxstudio/pathway/pagination"
	"github.com/priyxstudio/pathway/planner"
)

func init() {
	log.SetHandler(discard.Default)
}

// newBrokenService returns a service holding one module whose three tasks
// are ordered 1, 3, 9 when broken is set.
func newBrokenService(t *testing.T, broken bool) *planner.Service {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfiguration{
		Driver: "sqlite",
		Dsn:    filepath.Join(t.TempDir(), "repair.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	svc := planner.NewService(db, pagination.Bounds{Default: 20, Max: 100})
	plan, err := svc.CreatePlan(ctx, "user", planner.CreatePlanInput{Title: "plan"})
	require.NoError(t, err)
	module, err := svc.CreateModule(ctx, "user", plan.ID, planner.CreateModuleInput{Title: "module"})
	require.NoError(t, err)
	for _, title := range []string{"a", "b", "c"} {
		_, err := svc.CreateTask(ctx, "user", module.ID, planner.CreateTaskInput{Title: title})
		require.NoError(t, err)
	}
	if broken {
		breakOrder(t, db, 3, 9)
		breakOrder(t, db, 2, 3)
	}
	return svc
}

func breakOrder(t *testing.T, db *gorm.DB, from, to int) {
	require.NoError(t, db.Model(&models.Task{}).Where("order_index = ?", from).UpdateColumn("order_index", to).Error)
}

func refuse(t *testing.T) func(int) (bool, error) {
	return func(int) (bool, error) {
		t.Fatal("confirmation should not have been requested")
		return false, nil
	}
}

func TestRepairOrdersWithNothingBroken(t *testing.T) {
	svc := newBrokenService(t, false)

	results, applied, err := repairOrders(context.Background(), svc, false, false, refuse(t))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, results)
}

func TestRepairOrdersDryRun(t *testing.T) {
	svc := newBrokenService(t, true)

	results, applied, err := repairOrders(context.Background(), svc, true, false, refuse(t))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Len(t, results, 1)
}

func TestRepairOrdersAsksFirst(t *testing.T) {
	ctx := context.Background()
	svc := newBrokenService(t, true)

	var asked int
	decline := func(n int) (bool, error) {
		asked = n
		return false, nil
	}
	_, applied, err := repairOrders(ctx, svc, false, false, decline)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, asked)

	_, _, err = repairOrders(ctx, svc, false, false, func(int) (bool, error) {
		return false, huh.ErrUserAborted
	})
	assert.True(t, errors.Is(err, huh.ErrUserAborted))

	broken, err := svc.Repair(ctx, true)
	require.NoError(t, err)
	assert.Len(t, broken, 1)

	results, applied, err := repairOrders(ctx, svc, false, false, func(int) (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, results, 1)
	assert.EqualValues(t, 2, results[0].Changed)
}

func TestRepairOrdersSkipsConfirmationWithYes(t *testing.T) {
	ctx := context.Background()
	svc := newBrokenService(t, true)

	results, applied, err := repairOrders(ctx, svc, false, true, refuse(t))
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, results, 1)

	broken, err := svc.Repair(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, broken)
}
