package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/priyxstudio/pathway/pagination"
	"github.com/priyxstudio/pathway/planner"
	"github.com/priyxstudio/pathway/router/middleware"
)

// getPlans lists the plans of the authorized user.
// @Summary List plans
// @Description Plans are sorted by creation time, newest first, unless another sort field is requested. Pass the returned nextCursor to fetch the following page.
// @Tags Plans
// @Produce json
// @Param cursor query string false "Cursor returned by the previous page"
// @Param limit query int false "Page size" minimum(1)
// @Param sortField query string false "Sort field" Enums(createdAt,updatedAt,title)
// @Param sortDirection query string false "Sort direction" Enums(asc,desc)
// @Param status query string false "Only return plans with this status" Enums(active,archived)
// @Success 200 {object} router.PlanPageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerToken
// @Router /api/plans [get]
func getPlans(c *gin.Context) {
	var req pagination.Request
	if !bindPage(c, &req) {
		return
	}

	page, err := middleware.ExtractPlanner(c).ListPlans(c.Request.Context(), middleware.ExtractUser(c), req, c.Query("status"))
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// postPlan creates a new, empty plan.
// @Summary Create a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param plan body router.PlanCreateRequest true "Plan"
// @Success 201 {object} planner.PlanView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerToken
// @Router /api/plans [post]
func postPlan(c *gin.Context) {
	var data PlanCreateRequest
	if !bindJSON(c, &data) {
		return
	}

	view, err := middleware.ExtractPlanner(c).CreatePlan(c.Request.Context(), middleware.ExtractUser(c), planner.CreatePlanInput{
		Title:       data.Title,
		Description: data.Description,
	})
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// getPlanTree returns a plan with all of its modules and tasks in order.
// @Summary Get a plan tree
// @Tags Plans
// @Produce json
// @Param plan path string true "Plan identifier"
// @Success 200 {object} planner.PlanTree
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/plans/{plan} [get]
func getPlanTree(c *gin.Context) {
	tree, err := middleware.ExtractPlanner(c).GetPlanTree(c.Request.Context(), middleware.ExtractUser(c), c.Param("plan"))
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// patchPlan updates the title, description or status of a plan.
// @Summary Update a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param plan path string true "Plan identifier"
// @Param data body router.PlanUpdateRequest true "Fields to update"
// @Success 200 {object} planner.PlanView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/plans/{plan} [patch]
func patchPlan(c *gin.Context) {
	var data PlanUpdateRequest
	if !bindJSON(c, &data) {
		return
	}

	view, err := middleware.ExtractPlanner(c).UpdatePlan(c.Request.Context(), middleware.ExtractUser(c), c.Param("plan"), planner.UpdatePlanInput{
		Title:       data.Title,
		Description: data.Description,
		Status:      data.Status,
	})
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// deletePlan deletes a plan together with its modules and tasks.
// @Summary Delete a plan
// @Tags Plans
// @Produce json
// @Param plan path string true "Plan identifier"
// @Success 200 {object} router.DeleteResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerToken
// @Router /api/plans/{plan} [delete]
func deletePlan(c *gin.Context) {
	id, err := middleware.ExtractPlanner(c).DeletePlan(c.Request.Context(), middleware.ExtractUser(c), c.Param("plan"))
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{ID: id})
}
