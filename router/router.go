package router

import (
	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/internal/errdefs"
	"github.com/priyxstudio/pathway/planner"
	"github.com/priyxstudio/pathway/router/middleware"
)

// Configure configures the routing infrastructure for this instance.
func Configure(s *planner.Service) *gin.Engine {
	gin.SetMode("release")

	cfg := config.Get()
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(cfg.Api.TrustedProxies); err != nil {
		panic(errors.WithStack(err))
	}
	router.Use(middleware.AttachRequestID(), middleware.CaptureErrors())
	if cfg.Api.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(cfg.Api.RateLimit.Rate, cfg.Api.RateLimit.Burst).Handler())
	}
	router.Use(middleware.AttachPlanner(s))
	// Request logs are only emitted in debug mode; in production they would
	// drown out everything else.
	router.Use(gin.LoggerWithFormatter(func(params gin.LogFormatterParams) string {
		log.WithFields(log.Fields{
			"client_ip":  params.ClientIP,
			"status":     params.StatusCode,
			"latency":    params.Latency,
			"request_id": params.Keys["request_id"],
		}).Debugf("%s %s", params.MethodColor()+params.Method+params.ResetColor(), params.Path)

		return ""
	}))
	router.NoRoute(func(c *gin.Context) {
		middleware.CaptureAndAbort(c, errdefs.NotFound("the requested resource does not exist"))
	})

	// Public documentation endpoints
	if cfg.Api.Docs.Enabled {
		registerDocumentationRoutes(router)
	}

	router.GET("/api/system", getSystemInformation)

	// All the routes beyond this mount will use an authorization middleware
	// and will not be accessible without the correct Authorization header provided.
	protected := router.Group("/api")
	protected.Use(middleware.RequireAuthorization())
	protected.GET("/plans", getPlans)
	protected.POST("/plans", postPlan)

	plan := protected.Group("/plans/:plan")
	plan.Use(middleware.RequireUUIDParams("plan"))
	{
		plan.GET("", getPlanTree)
		plan.PATCH("", patchPlan)
		plan.DELETE("", deletePlan)
		plan.GET("/modules", getPlanModules)
		plan.POST("/modules", postPlanModule)
	}

	module := protected.Group("/modules/:module")
	module.Use(middleware.RequireUUIDParams("module"))
	{
		module.PATCH("", patchModule)
		module.DELETE("", deleteModule)
		module.PUT("/order", putModuleOrder)
		module.GET("/tasks", getModuleTasks)
		module.POST("/tasks", postModuleTask)
	}

	task := protected.Group("/tasks/:task")
	task.Use(middleware.RequireUUIDParams("task"))
	{
		task.PATCH("", patchTask)
		task.DELETE("", deleteTask)
		task.PUT("/position", putTaskPosition)
	}

	return router
}

// bindJSON decodes the request body into v, reporting malformed bodies as
// invalid requests. It returns false once the request has been aborted.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		middleware.CaptureAndAbort(c, errdefs.Wrap(err, errdefs.CodeInvalidRequest, "the request body is not valid: "+err.Error()))
		return false
	}
	return true
}

// bindPage decodes the pagination query parameters.
func bindPage(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		middleware.CaptureAndAbort(c, errdefs.Wrap(err, errdefs.CodeInvalidRequest, "the query parameters are not valid: "+err.Error()))
		return false
	}
	return true
}
