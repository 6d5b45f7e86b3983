package routes

import (
	"taclink/controllers"
	"taclink/middleware"
	"taclink/models"

	"github.com/gin-gonic/gin"
)

// SetupUnitRoutes configures field unit endpoints
func SetupUnitRoutes(router *gin.RouterGroup, unitController *controllers.UnitController, authMW *middleware.AuthMiddleware) {
	units := router.Group("/units")

	// The full roster is a command view
	units.GET("", authMW.RequireRole(models.RoleCommand), unitController.ListUnits)
	units.GET("/:unitId", unitController.GetUnit)
	units.PATCH("/:unitId/status", unitController.UpdateStatus)
}
