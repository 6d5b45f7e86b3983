package routes

import (
	"taclink/controllers"
	"taclink/middleware"
	"taclink/models"

	"github.com/gin-gonic/gin"
)

// SetupEmergencyRoutes configures incident endpoints
func SetupEmergencyRoutes(router *gin.RouterGroup, emergencyController *controllers.EmergencyController, authMW *middleware.AuthMiddleware) {
	emergencies := router.Group("/emergencies")

	emergencies.GET("", emergencyController.ListEmergencies)
	emergencies.POST("", emergencyController.ReportEmergency)
	emergencies.PATCH("/:emergencyId/status", emergencyController.UpdateStatus)

	// Dispatch is a command decision
	emergencies.POST("/:emergencyId/assign",
		authMW.RequireRole(models.RoleCommand),
		emergencyController.AssignUnit)
}
