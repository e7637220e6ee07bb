package planner

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/internal/database"
	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/internal/models"
	"github.com/priyxstudio/pathway/ordering"
	"github.com/priyxstudio/pathway/pagination"
)

const (
	alice = "alice"
	bob   = "bob"
)

func init() {
	log.SetHandler(discard.Default)
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.Open(context.Background(), config.DatabaseConfiguration{
		Driver: "sqlite",
		Dsn:    filepath.Join(t.TempDir(), "planner.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return NewService(db, pagination.Bounds{Default: 20, Max: 100}), db
}

func intp(v int) *int {
	return &v
}

func strp(v string) *string {
	return &v
}

type seeded struct {
	plan    PlanView
	modules []ModuleView
	tasks   [][]TaskView
}

// seed creates a plan for user with one module per entry of taskCounts. Module
// titles are "m0", "m1", ... and task titles "m0.t0", "m0.t1", ...
func seed(t *testing.T, s *Service, user string, taskCounts ...int) seeded {
	t.Helper()
	ctx := context.Background()
	plan, err := s.CreatePlan(ctx, user, CreatePlanInput{Title: "plan"})
	require.NoError(t, err)

	out := seeded{plan: plan}
	for i, n := range taskCounts {
		m, err := s.CreateModule(ctx, user, plan.ID, CreateModuleInput{Title: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
		out.modules = append(out.modules, m)

		var tasks []TaskView
		for j := 0; j < n; j++ {
			task, err := s.CreateTask(ctx, user, m.ID, CreateTaskInput{Title: fmt.Sprintf("m%d.t%d", i, j)})
			require.NoError(t, err)
			tasks = append(tasks, task)
		}
		out.tasks = append(out.tasks, tasks)
	}
	return out
}

// layout returns the titles of every module of a plan and of their tasks, in
// order, and asserts that every order sequence is dense.
func layout(t *testing.T, s *Service, user, planID string) map[string][]string {
	t.Helper()
	tree, err := s.GetPlanTree(context.Background(), user, planID)
	require.NoError(t, err)

	out := map[string][]string{}
	var modules []string
	for i, m := range tree.Modules {
		require.Equal(t, i+1, m.Order, "module %s", m.Title)
		modules = append(modules, m.Title)
		tasks := []string{}
		for j, task := range m.Tasks {
			require.Equal(t, j+1, task.Order, "task %s", task.Title)
			tasks = append(tasks, task.Title)
		}
		out[m.Title] = tasks
	}
	out[""] = modules
	return out
}

func verifyAll(t *testing.T, db *gorm.DB) {
	t.Helper()
	var plans, modules []uint
	require.NoError(t, db.Model(&models.Plan{}).Pluck("id", &plans).Error)
	require.NoError(t, db.Model(&models.LearningModule{}).Pluck("id", &modules).Error)
	for _, id := range plans {
		require.NoError(t, ordering.Verify(db, ordering.Modules.In(id)))
	}
	for _, id := range modules {
		require.NoError(t, ordering.Verify(db, ordering.Tasks.In(id)))
	}
}

func TestCreateAppendsWithoutTouchingSiblings(t *testing.T) {
	s, _ := newTestService(t)
	p := seed(t, s, alice, 3, 0)

	assert.Equal(t, []int{1, 2}, []int{p.modules[0].Order, p.modules[1].Order})
	for i, task := range p.tasks[0] {
		assert.Equal(t, i+1, task.Order)
		assert.Equal(t, p.modules[0].ID, task.ModuleID)
	}

	task, err := s.CreateTask(context.Background(), alice, p.modules[0].ID, CreateTaskInput{Title: "late"})
	require.NoError(t, err)
	assert.Equal(t, 4, task.Order)
	assert.Equal(t, []string{"m0.t0", "m0.t1", "m0.t2", "late"}, layout(t, s, alice, p.plan.ID)["m0"])
}

func TestCreateValidatesTitle(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.CreatePlan(context.Background(), alice, CreatePlanInput{Title: "   "})
	assert.Equal(t, errdefs.CodeInvalidRequest, errdefs.CodeOf(err))
}

func TestReorderModule(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 0, 0, 0, 0)

	time.Sleep(5 * time.Millisecond)
	view, err := s.ReorderModule(ctx, alice, p.modules[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Order)
	assert.Equal(t, p.plan.ID, view.PlanID)
	assert.True(t, view.UpdatedAt.After(p.modules[0].UpdatedAt))
	assert.Equal(t, []string{"m1", "m2", "m0", "m3"}, layout(t, s, alice, p.plan.ID)[""])

	_, err = s.ReorderModule(ctx, alice, p.modules[0].ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"m0", "m1", "m2", "m3"}, layout(t, s, alice, p.plan.ID)[""])

	for _, order := range []int{0, 5, -1} {
		_, err = s.ReorderModule(ctx, alice, p.modules[0].ID, order)
		assert.Equal(t, errdefs.CodeInvalidRange, errdefs.CodeOf(err), "order %d", order)
	}
}

func TestMoveTaskWithinModule(t *testing.T) {
	s, _ := newTestService(t)
	p := seed(t, s, alice, 4)

	view, err := s.MoveTask(context.Background(), alice, p.tasks[0][1].ID, MoveTaskInput{NewOrder: intp(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, view.Order)
	assert.Equal(t, p.modules[0].ID, view.ModuleID)
	assert.Equal(t, []string{"m0.t0", "m0.t2", "m0.t3", "m0.t1"}, layout(t, s, alice, p.plan.ID)["m0"])
}

func TestMoveTaskAcrossModules(t *testing.T) {
	s, _ := newTestService(t)
	p := seed(t, s, alice, 3, 1)

	time.Sleep(5 * time.Millisecond)
	view, err := s.MoveTask(context.Background(), alice, p.tasks[0][1].ID, MoveTaskInput{TargetModuleID: p.modules[1].ID})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Order)
	assert.Equal(t, p.modules[1].ID, view.ModuleID)
	assert.True(t, view.UpdatedAt.After(p.tasks[0][1].UpdatedAt))

	page, err := s.ListTasks(context.Background(), alice, p.modules[1].ID, pagination.Request{SortField: "updatedAt", Direction: "desc"})
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)
	assert.Equal(t, p.tasks[0][1].ID, page.Items[0].ID)

	l := layout(t, s, alice, p.plan.ID)
	assert.Equal(t, []string{"m0.t0", "m0.t2"}, l["m0"])
	assert.Equal(t, []string{"m1.t0", "m0.t1"}, l["m1"])
}

func TestMoveTaskToExplicitPosition(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 2, 2)

	_, err := s.MoveTask(ctx, alice, p.tasks[0][0].ID, MoveTaskInput{TargetModuleID: p.modules[1].ID, NewOrder: intp(3)})
	require.NoError(t, err)
	_, err = s.MoveTask(ctx, alice, p.tasks[0][1].ID, MoveTaskInput{TargetModuleID: p.modules[1].ID, NewOrder: intp(1)})
	require.NoError(t, err)

	l := layout(t, s, alice, p.plan.ID)
	assert.Equal(t, []string{}, l["m0"])
	assert.Equal(t, []string{"m0.t1", "m1.t0", "m1.t1", "m0.t0"}, l["m1"])
}

func TestMoveTaskRejections(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 2, 1)
	other := seed(t, s, alice, 1)
	foreign := seed(t, s, bob, 1)
	task := p.tasks[0][0].ID

	cases := map[string]struct {
		in   MoveTaskInput
		code errdefs.Code
	}{
		"order below range":      {MoveTaskInput{NewOrder: intp(0)}, errdefs.CodeInvalidRange},
		"order above range":      {MoveTaskInput{NewOrder: intp(3)}, errdefs.CodeInvalidRange},
		"missing order":          {MoveTaskInput{}, errdefs.CodeInvalidRequest},
		"order past target end":  {MoveTaskInput{TargetModuleID: p.modules[1].ID, NewOrder: intp(3)}, errdefs.CodeInvalidRange},
		"module of another plan": {MoveTaskInput{TargetModuleID: other.modules[0].ID}, errdefs.CodeInvalidRange},
		"module of another user": {MoveTaskInput{TargetModuleID: foreign.modules[0].ID}, errdefs.CodeAccessDenied},
		"unknown module":         {MoveTaskInput{TargetModuleID: "00000000-0000-4000-8000-000000000000"}, errdefs.CodeNotFound},
	}
	for name, tc := range cases {
		_, err := s.MoveTask(ctx, alice, task, tc.in)
		assert.Equal(t, tc.code, errdefs.CodeOf(err), name)
	}

	// None of the rejected moves may have changed anything.
	l := layout(t, s, alice, p.plan.ID)
	assert.Equal(t, []string{"m0.t0", "m0.t1"}, l["m0"])
	assert.Equal(t, []string{"m1.t0"}, l["m1"])
}

func TestOwnershipAndResolution(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 1)

	_, err := s.GetPlanTree(ctx, bob, p.plan.ID)
	assert.Equal(t, errdefs.CodeAccessDenied, errdefs.CodeOf(err))

	_, err = s.UpdateModule(ctx, bob, p.modules[0].ID, UpdateModuleInput{Title: strp("mine now")})
	assert.Equal(t, errdefs.CodeAccessDenied, errdefs.CodeOf(err))

	_, err = s.DeleteTask(ctx, bob, p.tasks[0][0].ID)
	assert.Equal(t, errdefs.CodeAccessDenied, errdefs.CodeOf(err))

	_, err = s.CreateTask(ctx, alice, "not-a-uuid", CreateTaskInput{Title: "x"})
	assert.Equal(t, errdefs.CodeNotFound, errdefs.CodeOf(err))

	_, err = s.DeletePlan(ctx, alice, "6f1c1b5e-8d0c-4c38-9f5e-2d6b7f0b9a11")
	assert.Equal(t, errdefs.CodeNotFound, errdefs.CodeOf(err))

	module, err := s.UpdateModule(ctx, alice, strings.ToUpper(p.modules[0].ID), UpdateModuleInput{Title: strp("loud")})
	require.NoError(t, err)
	assert.Equal(t, p.modules[0].ID, module.ID)
	assert.Equal(t, p.plan.ID, module.PlanID)
}

func TestDeleteCompacts(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 3, 2, 1)

	id, err := s.DeleteTask(ctx, alice, p.tasks[0][0].ID)
	require.NoError(t, err)
	assert.Equal(t, p.tasks[0][0].ID, id)

	id, err = s.DeleteModule(ctx, alice, p.modules[1].ID)
	require.NoError(t, err)
	assert.Equal(t, p.modules[1].ID, id)

	l := layout(t, s, alice, p.plan.ID)
	assert.Equal(t, []string{"m0", "m2"}, l[""])
	assert.Equal(t, []string{"m0.t1", "m0.t2"}, l["m0"])

	_, err = s.DeleteTask(ctx, alice, p.tasks[0][0].ID)
	assert.Equal(t, errdefs.CodeNotFound, errdefs.CodeOf(err))
}

func TestDeletePlanCascades(t *testing.T) {
	s, db := newTestService(t)
	p := seed(t, s, alice, 2, 3)
	keep := seed(t, s, alice, 1)

	_, err := s.DeletePlan(context.Background(), alice, p.plan.ID)
	require.NoError(t, err)

	var modules, tasks int64
	require.NoError(t, db.Model(&models.LearningModule{}).Count(&modules).Error)
	require.NoError(t, db.Model(&models.Task{}).Count(&tasks).Error)
	assert.EqualValues(t, 1, modules)
	assert.EqualValues(t, 1, tasks)

	_, err = s.GetPlanTree(context.Background(), alice, keep.plan.ID)
	assert.NoError(t, err)
}

func TestUpdateTask(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 1)
	id := p.tasks[0][0].ID
	due := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	view, err := s.UpdateTask(ctx, alice, id, UpdateTaskInput{
		Completed: boolp(true),
		DueDate:   Some(due),
		Memo:      Some("remember"),
	})
	require.NoError(t, err)
	assert.True(t, view.Completed)
	require.NotNil(t, view.CompletedAt)
	require.NotNil(t, view.DueDate)
	assert.True(t, due.Equal(*view.DueDate))
	assert.Equal(t, "remember", *view.Memo)
	assert.Equal(t, "m0.t0", view.Title)

	view, err = s.UpdateTask(ctx, alice, id, UpdateTaskInput{
		Completed: boolp(false),
		DueDate:   Null[time.Time](),
	})
	require.NoError(t, err)
	assert.False(t, view.Completed)
	assert.Nil(t, view.CompletedAt)
	assert.Nil(t, view.DueDate)
	require.NotNil(t, view.Memo)

	tree, err := s.GetPlanTree(ctx, alice, p.plan.ID)
	require.NoError(t, err)
	require.Len(t, tree.Modules[0].Tasks, 1)
	assert.Nil(t, tree.Modules[0].Tasks[0].CompletedAt)
	assert.Equal(t, "remember", *tree.Modules[0].Tasks[0].Memo)
}

func TestUpdatePlanAndModule(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 0)

	archived := models.PlanStatusArchived
	plan, err := s.UpdatePlan(ctx, alice, p.plan.ID, UpdatePlanInput{Status: &archived, Description: Some("desc")})
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusArchived, plan.Status)
	assert.Equal(t, "desc", *plan.Description)
	assert.Equal(t, "plan", plan.Title)
	assert.False(t, plan.UpdatedAt.Before(p.plan.UpdatedAt))

	bogus := models.PlanStatus("deleted")
	_, err = s.UpdatePlan(ctx, alice, p.plan.ID, UpdatePlanInput{Status: &bogus})
	assert.Equal(t, errdefs.CodeInvalidRequest, errdefs.CodeOf(err))

	module, err := s.UpdateModule(ctx, alice, p.modules[0].ID, UpdateModuleInput{Expanded: boolp(true), Title: strp("renamed")})
	require.NoError(t, err)
	assert.True(t, module.Expanded)
	assert.Equal(t, "renamed", module.Title)
	assert.Equal(t, 1, module.Order)
}

func TestListPlansNewestFirst(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_, err := s.CreatePlan(ctx, alice, CreatePlanInput{Title: fmt.Sprintf("plan %d", i)})
		require.NoError(t, err)
	}
	_, err := s.CreatePlan(ctx, bob, CreatePlanInput{Title: "not yours"})
	require.NoError(t, err)

	titles := func(p pagination.Page[PlanView]) []string {
		var out []string
		for _, v := range p.Items {
			out = append(out, v.Title)
		}
		return out
	}

	page, err := s.ListPlans(ctx, alice, pagination.Request{Limit: intp(2)}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"plan 5", "plan 4"}, titles(page))
	assert.True(t, page.HasNext)

	page, err = s.ListPlans(ctx, alice, pagination.Request{Limit: intp(2), Cursor: page.NextCursor}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"plan 3", "plan 2"}, titles(page))
	assert.True(t, page.HasNext)

	page, err = s.ListPlans(ctx, alice, pagination.Request{Limit: intp(2), Cursor: page.NextCursor}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"plan 1"}, titles(page))
	assert.False(t, page.HasNext)
	assert.Empty(t, page.NextCursor)

	page, err = s.ListPlans(ctx, alice, pagination.Request{}, "archived")
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = s.ListPlans(ctx, alice, pagination.Request{}, "deleted")
	assert.Equal(t, errdefs.CodeInvalidRequest, errdefs.CodeOf(err))

	_, err = s.ListPlans(ctx, alice, pagination.Request{Cursor: "garbage!"}, "")
	assert.Equal(t, errdefs.CodeInvalidCursor, errdefs.CodeOf(err))
}

func TestListModulesAndTasks(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 5, 0, 0)

	var seen []int
	req := pagination.Request{Limit: intp(2)}
	for {
		page, err := s.ListModules(ctx, alice, p.plan.ID, req)
		require.NoError(t, err)
		for _, m := range page.Items {
			seen = append(seen, m.Order)
			assert.Equal(t, p.plan.ID, m.PlanID)
		}
		if !page.HasNext {
			break
		}
		req.Cursor = page.NextCursor
	}
	assert.Equal(t, []int{1, 2, 3}, seen)

	page, err := s.ListTasks(ctx, alice, p.modules[0].ID, pagination.Request{SortField: "order", Direction: "desc", Limit: intp(3)})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, []int{5, 4, 3}, []int{page.Items[0].Order, page.Items[1].Order, page.Items[2].Order})
	assert.True(t, page.HasNext)

	_, err = s.ListTasks(ctx, bob, p.modules[0].ID, pagination.Request{})
	assert.Equal(t, errdefs.CodeAccessDenied, errdefs.CodeOf(err))

	_, err = s.ListModules(ctx, alice, p.plan.ID, pagination.Request{Limit: intp(1000)})
	assert.Equal(t, errdefs.CodeInvalidRange, errdefs.CodeOf(err))
}

func TestGetPlanTree(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 2, 0, 1)

	_, err := s.UpdateTask(ctx, alice, p.tasks[0][1].ID, UpdateTaskInput{Completed: boolp(true)})
	require.NoError(t, err)

	tree, err := s.GetPlanTree(ctx, alice, p.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, p.plan.ID, tree.ID)
	require.Len(t, tree.Modules, 3)
	assert.Len(t, tree.Modules[0].Tasks, 2)
	assert.NotNil(t, tree.Modules[1].Tasks)
	assert.Empty(t, tree.Modules[1].Tasks)
	assert.Equal(t, Progress{Total: 2, Completed: 1}, tree.Modules[0].Progress)
	assert.Equal(t, Progress{Total: 3, Completed: 1}, tree.Progress)
	assert.Equal(t, p.modules[2].ID, tree.Modules[2].Tasks[0].ModuleID)

	empty, err := s.CreatePlan(ctx, alice, CreatePlanInput{Title: "empty"})
	require.NoError(t, err)
	tree, err = s.GetPlanTree(ctx, alice, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, tree.Modules)
	assert.Empty(t, tree.Modules)
}

func TestAssembleTreeDropsDuplicateRows(t *testing.T) {
	plan := &models.Plan{ExternalID: "p"}
	mid, tid := uint(1), uint(10)
	row := treeRow{
		ModuleID: &mid, ModuleExternalID: strp("m"), ModuleOrder: intp(1),
		TaskID: &tid, TaskExternalID: strp("t"), TaskOrder: intp(1),
	}
	tree := assembleTree(plan, []treeRow{row, row, row})
	require.Len(t, tree.Modules, 1)
	require.Len(t, tree.Modules[0].Tasks, 1)
	assert.Equal(t, "m", tree.Modules[0].Tasks[0].ModuleID)
	assert.Equal(t, 1, tree.Progress.Total)
}

func TestRandomOperationsPreserveOrder(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	p := seed(t, s, alice, 3, 3, 3)

	pick := func(tree PlanTree) (ModuleNode, bool) {
		if len(tree.Modules) == 0 {
			return ModuleNode{}, false
		}
		return tree.Modules[rng.Intn(len(tree.Modules))], true
	}

	for i := 0; i < 150; i++ {
		tree, err := s.GetPlanTree(ctx, alice, p.plan.ID)
		require.NoError(t, err)
		m, ok := pick(tree)
		if !ok {
			_, err := s.CreateModule(ctx, alice, p.plan.ID, CreateModuleInput{Title: "new"})
			require.NoError(t, err)
			continue
		}

		switch op := rng.Intn(7); {
		case op == 0:
			_, err = s.CreateModule(ctx, alice, p.plan.ID, CreateModuleInput{Title: "new"})
		case op == 1:
			_, err = s.CreateTask(ctx, alice, m.ID, CreateTaskInput{Title: "new"})
		case op == 2 && len(tree.Modules) > 2:
			_, err = s.DeleteModule(ctx, alice, m.ID)
		case op == 3:
			_, err = s.ReorderModule(ctx, alice, m.ID, rng.Intn(len(tree.Modules))+1)
		case len(m.Tasks) == 0:
			_, err = s.CreateTask(ctx, alice, m.ID, CreateTaskInput{Title: "new"})
		case op == 4:
			_, err = s.DeleteTask(ctx, alice, m.Tasks[rng.Intn(len(m.Tasks))].ID)
		default:
			target, _ := pick(tree)
			task := m.Tasks[rng.Intn(len(m.Tasks))]
			in := MoveTaskInput{TargetModuleID: target.ID}
			limit := len(target.Tasks) + 1
			if target.ID == m.ID {
				limit = len(m.Tasks)
			}
			if target.ID == m.ID || rng.Intn(2) == 0 {
				in.NewOrder = intp(rng.Intn(limit) + 1)
			}
			before := len(target.Tasks)
			_, err = s.MoveTask(ctx, alice, task.ID, in)
			require.NoError(t, err)
			if target.ID != m.ID {
				after, err := s.GetPlanTree(ctx, alice, p.plan.ID)
				require.NoError(t, err)
				for _, node := range after.Modules {
					if node.ID == target.ID {
						assert.Len(t, node.Tasks, before+1)
					}
				}
			}
		}
		require.NoError(t, err, "step %d", i)
		verifyAll(t, db)
	}
}

func TestConcurrentReordersKeepOrderDense(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, alice, 0, 0, 0, 0, 0, 0)
	tasks := seed(t, s, alice, 8)

	var g errgroup.Group
	for i := 0; i < 24; i++ {
		i := i
		g.Go(func() error {
			module := p.modules[i%len(p.modules)]
			if _, err := s.ReorderModule(ctx, alice, module.ID, (i*7)%len(p.modules)+1); err != nil {
				return err
			}
			task := tasks.tasks[0][i%8]
			_, err := s.MoveTask(ctx, alice, task.ID, MoveTaskInput{NewOrder: intp((i*5)%8 + 1)})
			return err
		})
	}
	require.NoError(t, g.Wait())
	verifyAll(t, db)
}

func TestRepair(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	seed(t, s, alice, 3)

	results, err := s.Repair(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, db.Model(&models.Task{}).Where("order_index = ?", 2).UpdateColumn("order_index", 9).Error)

	results, err = s.Repair(ctx, true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Changed)

	results, err = s.Repair(ctx, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualValues(t, 2, results[0].Changed)
	verifyAll(t, db)
}

func boolp(v bool) *bool {
	return &v
}
