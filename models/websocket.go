package models

import (
	"encoding/json"
	"time"
)

// Inbound socket events (client -> engine). These names are part of
// the wire contract.
const (
	WSEventRegisterUnit          = "register_unit"
	WSEventUpdatePosition        = "update_position"
	WSEventRequestAllPositions   = "request_all_positions"
	WSEventReportEmergency       = "report_emergency"
	WSEventAssignUnit            = "assign_unit"
	WSEventUpdateEmergencyStatus = "update_emergency_status"
	WSEventSendMessage           = "send_message"
	WSEventInitiateCall          = "initiate_call"
	WSEventCallResponse          = "call_response"
)

// Outbound socket events (engine -> client).
const (
	WSEventUnitOnline             = "unit_online"
	WSEventUnitOffline            = "unit_offline"
	WSEventPositionUpdated        = "position_updated"
	WSEventAllPositions           = "all_positions"
	WSEventNewEmergency           = "new_emergency"
	WSEventEmergencyAssigned      = "emergency_assigned"
	WSEventNearbyResources        = "nearby_resources"
	WSEventUnitAssigned           = "unit_assigned"
	WSEventEmergencyStatusUpdated = "emergency_status_updated"
	WSEventNewMessage             = "new_message"
	WSEventMessageSent            = "message_sent"
	WSEventIncomingCall           = "incoming_call"
	WSEventError                  = "error"
)

// WSEnvelope is the frame exchanged on the realtime channel.
type WSEnvelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// WSOutbound is an outgoing frame; Data is marshalled as-is.
type WSOutbound struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type WSRegisterUnit struct {
	UnitID string `json:"unitId"`
}

type WSPositionUpdate struct {
	UnitID    string  `json:"unitId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type WSUnitOnline struct {
	UnitID            string        `json:"unitId"`
	UnitType          string        `json:"unitType"`
	Status            string        `json:"status"`
	Position          Position      `json:"position"`
	IsOnline          bool          `json:"isOnline"`
	Resources         UnitResources `json:"resources"`
	AssignedEmergency string        `json:"assignedEmergency,omitempty"`
}

type WSUnitOffline struct {
	UnitID string `json:"unitId"`
}

type WSPositionUpdated struct {
	UnitID   string   `json:"unitId"`
	Position Position `json:"position"`
	Status   string   `json:"status"`
}

type WSEmergencyAssigned struct {
	Emergency *Emergency `json:"emergency"`
	Role      string     `json:"role"`
}

type WSUnitAssigned struct {
	EmergencyID string  `json:"emergencyId"`
	UnitID      string  `json:"unitId"`
	Role        string  `json:"role"`
	DistanceKm  float64 `json:"distance"`
	ETAMinutes  int     `json:"eta"`
}

type WSEmergencyStatusUpdated struct {
	EmergencyID string     `json:"emergencyId"`
	Status      string     `json:"status"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

type WSMessageSent struct {
	MessageID string `json:"messageId"`
}

type WSIncomingCall struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	CallType  string    `json:"callType"`
	Timestamp time.Time `json:"timestamp"`
}

type WSCallResponse struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Accepted bool   `json:"accepted"`
}

type WSError struct {
	Message string `json:"message"`
}
