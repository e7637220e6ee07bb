package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/router/middleware"
	"github.com/priyxstudio/pathway/system"
)

// getSystemInformation returns information about the system that pathway is running on.
// @Summary Get system information
// @Description Returns the version and host of the service. Provide `v=2` to also receive host utilization.
// @Tags System
// @Produce json
// @Param v query string false "Response version" Enums(2)
// @Success 200 {object} router.SystemSummaryResponse "Default response"
// @Success 200 {object} router.SystemDetailResponse "Extended response when v=2"
// @Failure 500 {object} ErrorResponse
// @Router /api/system [get]
func getSystemInformation(c *gin.Context) {
	i, err := system.GetSystemInformation()
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}

	if c.Query("v") == "2" {
		dataPath := ""
		if db := config.Get().Database; db.SqliteDriver() {
			dataPath = db.Dsn
		}
		u, err := system.GetSystemUtilization(dataPath)
		if err != nil {
			middleware.CaptureAndAbort(c, err)
			return
		}
		c.JSON(http.StatusOK, SystemDetailResponse{Version: i.Version, System: i.System, Utilization: u})
		return
	}

	c.JSON(http.StatusOK, SystemSummaryResponse{
		Architecture:  i.System.Architecture,
		CPUCount:      i.System.CPUThreads,
		KernelVersion: i.System.KernelVersion,
		OS:            i.System.OSType,
		Version:       i.Version,
	})
}
