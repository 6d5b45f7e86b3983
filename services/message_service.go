package services

import (
	"context"
	"taclink/interfaces"
	"taclink/models"
	"taclink/utils"
	"time"

	"github.com/sirupsen/logrus"
)

// MessageService persists and routes chat-style messages and relays
// call signaling. Delivery is best effort: an offline direct
// recipient misses the event until it fetches message history.
type MessageService struct {
	messages  interfaces.MessageStore
	units     interfaces.UnitStore
	router    interfaces.EventRouter
	validator *utils.ValidationService
}

func NewMessageService(messages interfaces.MessageStore, units interfaces.UnitStore, router interfaces.EventRouter) *MessageService {
	return &MessageService{
		messages:  messages,
		units:     units,
		router:    router,
		validator: utils.NewValidationService(),
	}
}

// Send persists the message and routes it: point-to-point when a
// recipient is set and has a live session, broadcast otherwise. The
// sender's own session always gets a message_sent acknowledgment.
func (ms *MessageService) Send(ctx context.Context, senderSessionID string, req models.SendMessageRequest) (*models.Message, error) {
	if validationErrors := ms.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationErrorWithFields(utils.MissingFields(validationErrors))
	}

	message := &models.Message{
		From:             req.From,
		To:               req.To,
		Content:          req.Content,
		Priority:         req.Priority,
		MessageType:      req.MessageType,
		RelatedEmergency: req.RelatedEmergency,
	}

	if err := ms.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	if req.To != "" {
		ms.deliverDirect(ctx, req.To, message)
	} else {
		ms.router.Broadcast(models.WSEventNewMessage, message)
	}

	if senderSessionID != "" {
		ms.router.SendToSession(senderSessionID, models.WSEventMessageSent, models.WSMessageSent{
			MessageID: message.ID.Hex(),
		})
	}

	logrus.Debugf("Message sent from %s to %s", req.From, orBroadcast(req.To))
	return message, nil
}

func (ms *MessageService) deliverDirect(ctx context.Context, to string, message *models.Message) {
	recipient, err := ms.units.GetByUnitID(ctx, to)
	if err != nil {
		if !utils.IsNotFound(err) {
			logrus.Warnf("Recipient lookup failed for message to %s: %v", to, err)
		}
		return
	}
	if recipient.SessionID == "" {
		return
	}
	ms.router.SendToSession(recipient.SessionID, models.WSEventNewMessage, message)
}

// InitiateCall relays a call-initiation signal. Pure signaling:
// nothing is persisted and there is no delivery guarantee.
func (ms *MessageService) InitiateCall(req models.InitiateCallRequest) {
	ms.router.Broadcast(models.WSEventIncomingCall, models.WSIncomingCall{
		From:      req.From,
		To:        req.To,
		CallType:  req.CallType,
		Timestamp: time.Now(),
	})
	logrus.Debugf("Call initiated from %s to %s", req.From, req.To)
}

// RespondToCall relays the answer/decline signal.
func (ms *MessageService) RespondToCall(req models.CallResponseRequest) {
	ms.router.Broadcast(models.WSEventCallResponse, models.WSCallResponse{
		From:     req.From,
		To:       req.To,
		Accepted: req.Accepted,
	})
}

func (ms *MessageService) ListForIdentity(ctx context.Context, identityID string) ([]models.Message, error) {
	return ms.messages.ListForIdentity(ctx, identityID, 100)
}

func (ms *MessageService) MarkRead(ctx context.Context, messageID string) (*models.Message, error) {
	return ms.messages.MarkRead(ctx, messageID)
}

// ClearAll purges every persisted message. Command role only; there
// is no soft delete or undo.
func (ms *MessageService) ClearAll(ctx context.Context, role string) (int64, error) {
	if role != models.RoleCommand {
		return 0, utils.NewUnauthorizedError("only command can clear messages")
	}

	count, err := ms.messages.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	logrus.Infof("Cleared %d messages", count)
	return count, nil
}

func orBroadcast(to string) string {
	if to == "" {
		return "all"
	}
	return to
}
