package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"taclink/models"
	"taclink/utils"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Buffer size for client send channel
	sendBufferSize = 256

	// How long an inbound operation may spend against the store
	operationTimeout = 10 * time.Second
)

// WebSocket upgrader configuration
var DefaultUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper origin checking
		return true
	},
}

// Client is one connected session. The sessionID is the opaque handle
// the rest of the engine uses for point-to-point delivery.
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	// Resolved identity
	sessionID string
	userID    string
	role      string

	// Set once the session registers a unit; used to flip presence on
	// disconnect.
	unitID string

	connectedAt  time.Time
	lastActivity time.Time

	// Buffered channel of outbound frames
	send chan models.WSOutbound

	rateLimiter *utils.RateLimiter

	isActive      bool
	pingFailCount int
	closeOnce     sync.Once

	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(conn *websocket.Conn, hub *Hub, userID, role string) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		conn:         conn,
		hub:          hub,
		sessionID:    uuid.New().String(),
		userID:       userID,
		role:         role,
		connectedAt:  time.Now(),
		lastActivity: time.Now(),
		send:         make(chan models.WSOutbound, sendBufferSize),
		rateLimiter:  utils.NewRateLimiter(120, time.Minute),
		isActive:     true,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SessionID exposes the opaque session handle.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Register announces the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

func (c *Client) ReadPump() {
	defer func() {
		c.cleanup()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.pingFailCount = 0
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			_, messageData, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Errorf("WebSocket error for session %s: %v", c.sessionID, err)
				}
				return
			}

			c.lastActivity = time.Now()

			if !c.rateLimiter.Allow() {
				c.sendError("Rate limit exceeded")
				continue
			}

			c.handleEnvelope(messageData)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return

		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(frame); err != nil {
				logrus.Errorf("Write error for session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.pingFailCount++
				if c.pingFailCount > 3 {
					logrus.Warnf("Ping failed for session %s, disconnecting", c.sessionID)
					return
				}
			}
		}
	}
}

func (c *Client) handleEnvelope(messageData []byte) {
	var envelope models.WSEnvelope
	if err := json.Unmarshal(messageData, &envelope); err != nil {
		c.sendError("Invalid message format")
		return
	}

	switch envelope.Event {
	case models.WSEventRegisterUnit:
		c.handleRegisterUnit(envelope.Data)
	case models.WSEventUpdatePosition:
		c.handleUpdatePosition(envelope.Data)
	case models.WSEventRequestAllPositions:
		c.handleRequestAllPositions()
	case models.WSEventReportEmergency:
		c.handleReportEmergency(envelope.Data)
	case models.WSEventAssignUnit:
		c.handleAssignUnit(envelope.Data)
	case models.WSEventUpdateEmergencyStatus:
		c.handleUpdateEmergencyStatus(envelope.Data)
	case models.WSEventSendMessage:
		c.handleSendMessage(envelope.Data)
	case models.WSEventInitiateCall:
		c.handleInitiateCall(envelope.Data)
	case models.WSEventCallResponse:
		c.handleCallResponse(envelope.Data)
	default:
		c.sendError("Unknown event: " + envelope.Event)
	}
}

func (c *Client) handleRegisterUnit(data json.RawMessage) {
	var req models.WSRegisterUnit
	if err := json.Unmarshal(data, &req); err != nil || req.UnitID == "" {
		c.sendError("Unit ID required")
		return
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	unit, err := c.hub.presence.Register(ctx, req.UnitID, c.sessionID)
	if err != nil {
		c.reportError("Failed to register unit", err)
		return
	}

	c.unitID = unit.UnitID
}

func (c *Client) handleUpdatePosition(data json.RawMessage) {
	var req models.WSPositionUpdate
	if err := json.Unmarshal(data, &req); err != nil || req.UnitID == "" {
		c.sendError("Invalid position data")
		return
	}

	if !utils.IsValidCoordinate(req.Latitude, req.Longitude) {
		c.sendError("Invalid coordinates")
		return
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	if _, err := c.hub.presence.UpdatePosition(ctx, req.UnitID, req.Latitude, req.Longitude); err != nil {
		c.reportError("Failed to update position", err)
	}
}

func (c *Client) handleRequestAllPositions() {
	ctx, cancel := c.operationContext()
	defer cancel()

	units, err := c.hub.presence.SnapshotAll(ctx)
	if err != nil {
		c.reportError("Failed to fetch positions", err)
		return
	}

	c.enqueue(models.WSOutbound{
		Event:     models.WSEventAllPositions,
		Data:      units,
		Timestamp: time.Now(),
	})
}

func (c *Client) handleReportEmergency(data json.RawMessage) {
	var req models.ReportEmergencyRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("Invalid emergency data")
		return
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	if _, err := c.hub.emergency.Report(ctx, c.userID, req); err != nil {
		c.reportError("Failed to report emergency", err)
	}
}

func (c *Client) handleAssignUnit(data json.RawMessage) {
	if c.role != models.RoleCommand {
		c.sendError("Only command can assign units")
		return
	}

	var req models.AssignUnitRequest
	if err := json.Unmarshal(data, &req); err != nil || req.EmergencyID == "" || req.UnitID == "" {
		c.sendError("Invalid assignment data")
		return
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	if _, err := c.hub.dispatch.Assign(ctx, req.EmergencyID, req.UnitID, req.Role); err != nil {
		c.reportError("Failed to assign unit", err)
	}
}

func (c *Client) handleUpdateEmergencyStatus(data json.RawMessage) {
	var req struct {
		EmergencyID string `json:"emergencyId"`
		Status      string `json:"status"`
		Notes       string `json:"notes,omitempty"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.EmergencyID == "" || req.Status == "" {
		c.sendError("Invalid status update data")
		return
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	if _, err := c.hub.emergency.Transition(ctx, req.EmergencyID, req.Status, req.Notes); err != nil {
		c.reportError("Failed to update emergency status", err)
	}
}

func (c *Client) handleSendMessage(data json.RawMessage) {
	var req models.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("Invalid message data")
		return
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	if _, err := c.hub.message.Send(ctx, c.sessionID, req); err != nil {
		c.reportError("Failed to send message", err)
	}
}

func (c *Client) handleInitiateCall(data json.RawMessage) {
	var req models.InitiateCallRequest
	if err := json.Unmarshal(data, &req); err != nil || req.From == "" || req.To == "" {
		c.sendError("Invalid call data")
		return
	}

	c.hub.message.InitiateCall(req)
}

func (c *Client) handleCallResponse(data json.RawMessage) {
	var req models.CallResponseRequest
	if err := json.Unmarshal(data, &req); err != nil || req.From == "" || req.To == "" {
		c.sendError("Invalid call response data")
		return
	}

	c.hub.message.RespondToCall(req)
}

// reportError surfaces a failure to the originating session only.
// Validation and not-found problems carry their own message; anything
// else gets the generic one so internals stay internal.
func (c *Client) reportError(generic string, err error) {
	if se, ok := utils.GetServiceError(err); ok && se.StatusCode < 500 {
		c.sendError(se.Message)
		return
	}
	logrus.Errorf("%s (session %s): %v", generic, c.sessionID, err)
	c.sendError(generic)
}

func (c *Client) sendError(message string) {
	c.enqueue(models.WSOutbound{
		Event:     models.WSEventError,
		Data:      models.WSError{Message: message},
		Timestamp: time.Now(),
	})
}

func (c *Client) enqueue(frame models.WSOutbound) {
	if !c.isActive {
		return
	}

	select {
	case c.send <- frame:
	default:
		// Channel full, client likely disconnected
		logrus.Warnf("Send channel full for session %s, dropping %s", c.sessionID, frame.Event)
	}
}

func (c *Client) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), operationTimeout)
}

func (c *Client) cleanup() {
	c.closeOnce.Do(func() {
		c.isActive = false

		c.hub.unregister <- c

		// Connection loss flips presence to offline once detected; a
		// no-op if this session never registered a unit.
		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()
		c.hub.presence.Unregister(ctx, c.sessionID)

		c.cancel()
		close(c.send)
		c.conn.Close()

		logrus.Infof("Session cleaned up: %s", c.sessionID)
	})
}
