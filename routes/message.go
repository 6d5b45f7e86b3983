package routes

import (
	"taclink/controllers"
	"taclink/middleware"
	"taclink/models"

	"github.com/gin-gonic/gin"
)

// SetupMessageRoutes configures message log endpoints
func SetupMessageRoutes(router *gin.RouterGroup, messageController *controllers.MessageController, authMW *middleware.AuthMiddleware) {
	messages := router.Group("/messages")

	messages.GET("", messageController.ListMessages)
	messages.PATCH("/:messageId/read", messageController.MarkRead)

	messages.DELETE("/clear",
		authMW.RequireRole(models.RoleCommand),
		messageController.ClearAll)
}
