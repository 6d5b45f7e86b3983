package routes

import (
	"taclink/controllers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes configures the public authentication endpoints
func SetupAuthRoutes(router *gin.RouterGroup, authController *controllers.AuthController) {
	auth := router.Group("/auth")

	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
}
