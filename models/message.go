package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message types
const (
	MessageTypeText       = "text"
	MessageTypeAlert      = "alert"
	MessageTypeAssignment = "assignment"
	MessageTypeSystem     = "system"
)

// Message priorities
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From        string             `bson:"from" json:"from"`
	To          string             `bson:"to,omitempty" json:"to,omitempty"` // empty = broadcast
	MessageType string             `bson:"messageType" json:"messageType"`
	Priority    string             `bson:"priority" json:"priority"`
	Content     string             `bson:"content" json:"content"`

	RelatedEmergency string `bson:"relatedEmergency,omitempty" json:"relatedEmergency,omitempty"`

	IsRead    bool      `bson:"isRead" json:"isRead"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func IsValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeAlert, MessageTypeAssignment, MessageTypeSystem:
		return true
	}
	return false
}

func IsValidPriority(p string) bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type SendMessageRequest struct {
	From             string `json:"from" validate:"required"`
	To               string `json:"to,omitempty"`
	Content          string `json:"content" validate:"required"`
	Priority         string `json:"priority,omitempty" validate:"omitempty,message_priority"`
	MessageType      string `json:"messageType,omitempty" validate:"omitempty,message_type"`
	RelatedEmergency string `json:"relatedEmergency,omitempty"`
}

// Call signaling payloads. Calls are never persisted; they exist only
// on the wire.
type InitiateCallRequest struct {
	From     string `json:"from" validate:"required"`
	To       string `json:"to" validate:"required"`
	CallType string `json:"callType,omitempty"`
}

type CallResponseRequest struct {
	From     string `json:"from" validate:"required"`
	To       string `json:"to" validate:"required"`
	Accepted bool   `json:"accepted"`
}
