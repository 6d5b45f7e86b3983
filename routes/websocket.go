package routes

import (
	"taclink/controllers"

	"github.com/gin-gonic/gin"
)

// SetupWebSocketRoutes configures the realtime endpoint. The upgrade
// handler does its own token validation from the query string.
func SetupWebSocketRoutes(router *gin.Engine, wsController *controllers.WebSocketController) {
	router.GET("/ws", wsController.HandleWebSocket)
}
