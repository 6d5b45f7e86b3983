package controllers

import (
	"taclink/models"
	"taclink/services"
	"taclink/utils"
	"taclink/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type WebSocketController struct {
	hub         *websocket.Hub
	authService *services.AuthService
}

func NewWebSocketController(hub *websocket.Hub, authService *services.AuthService) *WebSocketController {
	return &WebSocketController{
		hub:         hub,
		authService: authService,
	}
}

// HandleWebSocket authenticates the caller and upgrades the connection.
// The token travels as a query parameter because browser WebSocket
// clients cannot set headers.
func (wsc *WebSocketController) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.UnauthorizedResponse(c, "Authentication token is required")
		return
	}

	claims, err := wsc.authService.ValidateToken(token)
	if err != nil {
		logrus.Errorf("WebSocket authentication failed: %v", err)
		utils.UnauthorizedResponse(c, "Invalid authentication token")
		return
	}

	user, err := wsc.authService.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		logrus.Errorf("Failed to get user for WebSocket: %v", err)
		utils.UnauthorizedResponse(c, "User not found")
		return
	}

	conn, err := websocket.DefaultUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("Failed to upgrade WebSocket connection: %v", err)
		utils.BadRequestResponse(c, "Failed to establish WebSocket connection")
		return
	}

	client := websocket.NewClient(conn, wsc.hub, user.ID.Hex(), user.Role)
	client.Register()

	go client.WritePump()
	go client.ReadPump()

	logrus.Infof("WebSocket connection established for user %s (session %s)", user.ID.Hex(), client.SessionID())
}

// GetStats reports connection counts, command only.
func (wsc *WebSocketController) GetStats(c *gin.Context) {
	role := c.GetString("role")
	if role != models.RoleCommand {
		utils.ForbiddenResponse(c, "Command access required")
		return
	}

	utils.SuccessResponse(c, "Connection stats retrieved", gin.H{
		"stats":    wsc.hub.GetStats(),
		"sessions": wsc.hub.ConnectedSessions(),
	})
}
