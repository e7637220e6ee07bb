package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/priyxstudio/pathway/pagination"
	"github.com/priyxstudio/pathway/planner"
	"github.com/priyxstudio/pathway/router/middleware"
)

// getPlanModules lists the modules of a plan.
// @Summary List the modules of a plan
// @Description Modules are returned in plan order unless another sort field is requested.
// @Tags Modules
// @Produce json
// @Param plan path string true "Plan identifier"
// @Param cursor query string false "Cursor returned by the previous page"
// @Param limit query int false "Page size" minimum(1)
// @Param sortField query string false "Sort field" Enums(order,createdAt,updatedAt,title)
// @Param sortDirection query string false "Sort direction" Enums(asc,desc)
// @Success 200 {object} router.ModulePageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/plans/{plan}/modules [get]
func getPlanModules(c *gin.Context) {
	var req pagination.Request
	if !bindPage(c, &req) {
		return
	}

	page, err := middleware.ExtractPlanner(c).ListModules(c.Request.Context(), middleware.ExtractUser(c), c.Param("plan"), req)
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// postPlanModule appends a module to the end of a plan.
// @Summary Create a module
// @Tags Modules
// @Accept json
// @Produce json
// @Param plan path string true "Plan identifier"
// @Param module body router.ModuleCreateRequest true "Module"
// @Success 201 {object} planner.ModuleView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/plans/{plan}/modules [post]
func postPlanModule(c *gin.Context) {
	var data ModuleCreateRequest
	if !bindJSON(c, &data) {
		return
	}

	view, err := middleware.ExtractPlanner(c).CreateModule(c.Request.Context(), middleware.ExtractUser(c), c.Param("plan"), planner.CreateModuleInput{
		Title:       data.Title,
		Description: data.Description,
		Expanded:    data.Expanded,
	})
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// patchModule updates the title, description or expanded flag of a module.
// @Summary Update a module
// @Tags Modules
// @Accept json
// @Produce json
// @Param module path string true "Module identifier"
// @Param data body router.ModuleUpdateRequest true "Fields to update"
// @Success 200 {object} planner.ModuleView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/modules/{module} [patch]
func patchModule(c *gin.Context) {
	var data ModuleUpdateRequest
	if !bindJSON(c, &data) {
		return
	}

	view, err := middleware.ExtractPlanner(c).UpdateModule(c.Request.Context(), middleware.ExtractUser(c), c.Param("module"), planner.UpdateModuleInput{
		Title:       data.Title,
		Description: data.Description,
		Expanded:    data.Expanded,
	})
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// deleteModule deletes a module and its tasks and closes the gap it leaves in
// the plan order.
// @Summary Delete a module
// @Tags Modules
// @Produce json
// @Param module path string true "Module identifier"
// @Success 200 {object} router.DeleteResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/modules/{module} [delete]
func deleteModule(c *gin.Context) {
	id, err := middleware.ExtractPlanner(c).DeleteModule(c.Request.Context(), middleware.ExtractUser(c), c.Param("module"))
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{ID: id})
}

// putModuleOrder moves a module to a new position within its plan.
// @Summary Reorder a module
// @Tags Modules
// @Accept json
// @Produce json
// @Param module path string true "Module identifier"
// @Param data body router.ModuleOrderRequest true "New 1-based position"
// @Success 200 {object} planner.ModuleView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/modules/{module}/order [put]
func putModuleOrder(c *gin.Context) {
	var data ModuleOrderRequest
	if !bindJSON(c, &data) {
		return
	}

	view, err := middleware.ExtractPlanner(c).ReorderModule(c.Request.Context(), middleware.ExtractUser(c), c.Param("module"), *data.NewOrder)
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
