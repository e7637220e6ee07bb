package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/priyxstudio/pathway/pagination"
	"github.com/priyxstudio/pathway/planner"
	"github.com/priyxstudio/pathway/router/middleware"
)

// getModuleTasks lists the tasks of a module.
// @Summary List the tasks of a module
// @Description Tasks are returned in module order unless another sort field is requested.
// @Tags Tasks
// @Produce json
// @Param module path string true "Module identifier"
// @Param cursor query string false "Cursor returned by the previous page"
// @Param limit query int false "Page size" minimum(1)
// @Param sortField query string false "Sort field" Enums(order,createdAt,updatedAt,title)
// @Param sortDirection query string false "Sort direction" Enums(asc,desc)
// @Success 200 {object} router.TaskPageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/modules/{module}/tasks [get]
func getModuleTasks(c *gin.Context) {
	var req pagination.Request
	if !bindPage(c, &req) {
		return
	}

	page, err := middleware.ExtractPlanner(c).ListTasks(c.Request.Context(), middleware.ExtractUser(c), c.Param("module"), req)
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// postModuleTask appends a task to the end of a module.
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param module path string true "Module identifier"
// @Param task body router.TaskCreateRequest true "Task"
// @Success 201 {object} planner.TaskView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/modules/{module}/tasks [post]
func postModuleTask(c *gin.Context) {
	var data TaskCreateRequest
	if !bindJSON(c, &data) {
		return
	}

	view, err := middleware.ExtractPlanner(c).CreateTask(c.Request.Context(), middleware.ExtractUser(c), c.Param("module"), planner.CreateTaskInput{
		Title:       data.Title,
		Description: data.Description,
		DueDate:     data.DueDate,
		Memo:        data.Memo,
	})
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// patchTask updates a task. Completing a task records when it was completed.
// @Summary Update a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param task path string true "Task identifier"
// @Param data body router.TaskUpdateRequest true "Fields to update"
// @Success 200 {object} planner.TaskView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/tasks/{task} [patch]
func patchTask(c *gin.Context) {
	var data TaskUpdateRequest
	if !bindJSON(c, &data) {
		return
	}

	view, err := middleware.ExtractPlanner(c).UpdateTask(c.Request.Context(), middleware.ExtractUser(c), c.Param("task"), planner.UpdateTaskInput{
		Title:       data.Title,
		Description: data.Description,
		Completed:   data.Completed,
		DueDate:     data.DueDate,
		Memo:        data.Memo,
	})
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// deleteTask deletes a task and closes the gap it leaves in its module.
// @Summary Delete a task
// @Tags Tasks
// @Produce json
// @Param task path string true "Task identifier"
// @Success 200 {object} router.DeleteResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/tasks/{task} [delete]
func deleteTask(c *gin.Context) {
	id, err := middleware.ExtractPlanner(c).DeleteTask(c.Request.Context(), middleware.ExtractUser(c), c.Param("task"))
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{ID: id})
}

// putTaskPosition moves a task within its module or into another module of
// the same plan.
// @Summary Move a task
// @Description Without targetModuleId the task is reordered within its module and newOrder is required. With targetModuleId the task is inserted at newOrder, or appended when newOrder is omitted.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param task path string true "Task identifier"
// @Param data body router.TaskMoveRequest true "Target position"
// @Success 200 {object} planner.TaskView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/tasks/{task}/position [put]
func putTaskPosition(c *gin.Context) {
	var data TaskMoveRequest
	if !bindJSON(c, &data) {
		return
	}

	view, err := middleware.ExtractPlanner(c).MoveTask(c.Request.Context(), middleware.ExtractUser(c), c.Param("task"), planner.MoveTaskInput{
		TargetModuleID: data.TargetModuleID,
		NewOrder:       data.NewOrder,
	})
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
