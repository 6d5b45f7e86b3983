package controllers

import (
	"taclink/services"
	"taclink/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MessageController struct {
	messageService *services.MessageService
}

func NewMessageController(messageService *services.MessageService) *MessageController {
	return &MessageController{
		messageService: messageService,
	}
}

// ListMessages returns the tail of traffic visible to one identity:
// messages it sent, messages addressed to it, and broadcasts.
func (mc *MessageController) ListMessages(c *gin.Context) {
	identity := c.Query("identity")
	if identity == "" {
		utils.BadRequestResponse(c, "identity query parameter is required")
		return
	}

	messages, err := mc.messageService.ListForIdentity(c.Request.Context(), identity)
	if err != nil {
		logrus.Errorf("Failed to list messages for %s: %v", identity, err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Messages retrieved", messages)
}

// MarkRead flags one message as read.
func (mc *MessageController) MarkRead(c *gin.Context) {
	messageID := c.Param("messageId")
	if messageID == "" {
		utils.BadRequestResponse(c, "Message ID is required")
		return
	}

	message, err := mc.messageService.MarkRead(c.Request.Context(), messageID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Message marked as read", message)
}

// ClearAll purges the whole message log, command only.
func (mc *MessageController) ClearAll(c *gin.Context) {
	role := c.GetString("role")

	count, err := mc.messageService.ClearAll(c.Request.Context(), role)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	logrus.Infof("Message log cleared: %d messages removed", count)
	utils.SuccessResponse(c, "Message log cleared", gin.H{"deleted": count})
}
