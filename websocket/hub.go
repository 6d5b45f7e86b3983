package websocket

import (
	"context"
	"sync"
	"taclink/models"
	"taclink/services"
	"time"

	"github.com/sirupsen/logrus"
)

// Hub is the event router: it tracks connected sessions and delivers
// domain events either point-to-point by session handle or broadcast
// to every connected session. Delivery is best effort while connected;
// there is no queue or retry, and a stale session handle is a no-op.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Session handle to client mapping for point-to-point delivery
	sessions map[string]*Client

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Fan-out delivery
	broadcast chan models.WSOutbound

	// Point-to-point delivery
	direct chan directFrame

	// Service dependencies, attached after construction because the
	// services themselves take the hub as their event router.
	presence  *services.PresenceService
	emergency *services.EmergencyService
	dispatch  *services.DispatchService
	message   *services.MessageService

	stats   HubStats
	statsMu sync.RWMutex

	mutex sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

type directFrame struct {
	SessionID string
	Frame     models.WSOutbound
}

// HubStats is a point-in-time snapshot of the router's counters.
type HubStats struct {
	TotalConnections  int64     `json:"totalConnections"`
	ActiveConnections int       `json:"activeConnections"`
	EventsSent        int64     `json:"eventsSent"`
	StartTime         time.Time `json:"startTime"`
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[*Client]bool),
		sessions:   make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.WSOutbound, 256),
		direct:     make(chan directFrame, 256),
		stats: HubStats{
			StartTime: time.Now(),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// AttachServices wires the domain services the hub dispatches inbound
// events to. Must be called before Run.
func (h *Hub) AttachServices(
	presence *services.PresenceService,
	emergency *services.EmergencyService,
	dispatch *services.DispatchService,
	message *services.MessageService,
) {
	h.presence = presence
	h.emergency = emergency
	h.dispatch = dispatch
	h.message = message
}

// Presence exposes the attached presence service, for background
// workers constructed after route setup.
func (h *Hub) Presence() *services.PresenceService {
	return h.presence
}

func (h *Hub) Run() {
	logrus.Info("Event router starting...")

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case frame := <-h.broadcast:
			h.deliverBroadcast(frame)

		case frame := <-h.direct:
			h.deliverDirect(frame)

		case <-h.ctx.Done():
			logrus.Info("Event router shutting down...")
			return
		}
	}
}

// Broadcast delivers an event to every currently connected session.
func (h *Hub) Broadcast(event string, data interface{}) {
	frame := models.WSOutbound{Event: event, Data: data, Timestamp: time.Now()}

	select {
	case h.broadcast <- frame:
	default:
		logrus.Warnf("Broadcast channel full, dropping %s", event)
	}
}

// SendToSession delivers an event to one session handle. A handle
// that no longer maps to a connection is silently ignored;
// disconnection is not an error condition for the sender.
func (h *Hub) SendToSession(sessionID, event string, data interface{}) {
	frame := directFrame{
		SessionID: sessionID,
		Frame:     models.WSOutbound{Event: event, Data: data, Timestamp: time.Now()},
	}

	select {
	case h.direct <- frame:
	default:
		logrus.Warnf("Direct channel full, dropping %s for session %s", event, sessionID)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.sessions[client.sessionID] = client

	h.statsMu.Lock()
	h.stats.ActiveConnections++
	h.stats.TotalConnections++
	active := h.stats.ActiveConnections
	h.statsMu.Unlock()

	logrus.Infof("Session connected: %s (%s, total: %d)", client.sessionID, client.role, active)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		delete(h.sessions, client.sessionID)

		h.statsMu.Lock()
		h.stats.ActiveConnections--
		active := h.stats.ActiveConnections
		h.statsMu.Unlock()

		logrus.Infof("Session disconnected: %s (total: %d)", client.sessionID, active)
	}
}

func (h *Hub) deliverBroadcast(frame models.WSOutbound) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		client.enqueue(frame)
	}
	h.incrementEventsSent()
}

func (h *Hub) deliverDirect(frame directFrame) {
	h.mutex.RLock()
	client := h.sessions[frame.SessionID]
	h.mutex.RUnlock()

	if client != nil {
		client.enqueue(frame.Frame)
		h.incrementEventsSent()
	}
}

// ConnectedSessions returns the currently bound session handles.
func (h *Hub) ConnectedSessions() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sessions := make([]string, 0, len(h.sessions))
	for sessionID := range h.sessions {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

func (h *Hub) GetStats() HubStats {
	h.statsMu.RLock()
	defer h.statsMu.RUnlock()

	return HubStats{
		TotalConnections:  h.stats.TotalConnections,
		ActiveConnections: h.stats.ActiveConnections,
		EventsSent:        h.stats.EventsSent,
		StartTime:         h.stats.StartTime,
	}
}

func (h *Hub) incrementEventsSent() {
	h.statsMu.Lock()
	h.stats.EventsSent++
	h.statsMu.Unlock()
}

func (h *Hub) Shutdown() {
	logrus.Info("Shutting down event router...")

	// Snapshot first; cleanup unregisters through the run loop, which
	// must still be draining channels while clients disconnect.
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		client.cleanup()
	}

	h.cancel()

	logrus.Info("Event router shutdown complete")
}
