package services

import (
	"context"
	"sync"
	"taclink/interfaces"
	"taclink/models"
	"taclink/utils"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store fakes. Patch semantics mirror the Mongo
// repositories: a nil patch value clears the field.

type fakeUnitStore struct {
	mu    sync.Mutex
	units map[string]*models.Unit
}

func newFakeUnitStore(units ...models.Unit) *fakeUnitStore {
	s := &fakeUnitStore{units: make(map[string]*models.Unit)}
	for i := range units {
		u := units[i]
		s.units[u.UnitID] = &u
	}
	return s
}

func (s *fakeUnitStore) Create(ctx context.Context, unit *models.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit.ID = primitive.NewObjectID()
	unit.CreatedAt = time.Now()
	unit.UpdatedAt = time.Now()
	cp := *unit
	s.units[unit.UnitID] = &cp
	return nil
}

func (s *fakeUnitStore) GetByUnitID(ctx context.Context, unitID string) (*models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[unitID]
	if !ok {
		return nil, utils.NewNotFoundError("Unit")
	}
	cp := *unit
	return &cp, nil
}

func (s *fakeUnitStore) GetByUserID(ctx context.Context, userID string) (*models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, unit := range s.units {
		if unit.UserID.Hex() == userID {
			cp := *unit
			return &cp, nil
		}
	}
	return nil, utils.NewNotFoundError("Unit")
}

func (s *fakeUnitStore) GetBySessionID(ctx context.Context, sessionID string) (*models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, unit := range s.units {
		if unit.SessionID != "" && unit.SessionID == sessionID {
			cp := *unit
			return &cp, nil
		}
	}
	return nil, utils.NewNotFoundError("Unit")
}

func (s *fakeUnitStore) List(ctx context.Context) ([]models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Unit, 0, len(s.units))
	for _, unit := range s.units {
		out = append(out, *unit)
	}
	return out, nil
}

func (s *fakeUnitStore) ListOnline(ctx context.Context) ([]models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Unit, 0)
	for _, unit := range s.units {
		if unit.IsOnline {
			out = append(out, *unit)
		}
	}
	return out, nil
}

func (s *fakeUnitStore) ListStaleOnline(ctx context.Context, cutoff time.Time) ([]models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Unit, 0)
	for _, unit := range s.units {
		if unit.IsOnline && unit.Position.LastUpdated.Before(cutoff) {
			out = append(out, *unit)
		}
	}
	return out, nil
}

func (s *fakeUnitStore) Update(ctx context.Context, unitID string, patch map[string]interface{}) (*models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, ok := s.units[unitID]
	if !ok {
		return nil, utils.NewNotFoundError("Unit")
	}

	for key, value := range patch {
		switch key {
		case "isOnline":
			unit.IsOnline = value.(bool)
		case "sessionId":
			if value == nil {
				unit.SessionID = ""
			} else {
				unit.SessionID = value.(string)
			}
		case "status":
			unit.Status = value.(string)
		case "position":
			unit.Position = value.(models.Position)
		case "assignedEmergency":
			if value == nil {
				unit.AssignedEmergency = ""
			} else {
				unit.AssignedEmergency = value.(string)
			}
		}
	}
	unit.UpdatedAt = time.Now()

	cp := *unit
	return &cp, nil
}

type fakeEmergencyStore struct {
	mu          sync.Mutex
	emergencies map[string]*models.Emergency
}

func newFakeEmergencyStore(emergencies ...models.Emergency) *fakeEmergencyStore {
	s := &fakeEmergencyStore{emergencies: make(map[string]*models.Emergency)}
	for i := range emergencies {
		e := emergencies[i]
		s.emergencies[e.EmergencyID] = &e
	}
	return s
}

func (s *fakeEmergencyStore) Create(ctx context.Context, emergency *models.Emergency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emergency.ID = primitive.NewObjectID()
	emergency.CreatedAt = time.Now()
	emergency.UpdatedAt = time.Now()
	if emergency.AssignedUnits == nil {
		emergency.AssignedUnits = []models.AssignedUnit{}
	}
	if emergency.Notes == nil {
		emergency.Notes = []string{}
	}
	cp := *emergency
	s.emergencies[emergency.EmergencyID] = &cp
	return nil
}

func (s *fakeEmergencyStore) GetByEmergencyID(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emergency, ok := s.emergencies[emergencyID]
	if !ok {
		return nil, utils.NewNotFoundError("Emergency")
	}
	cp := *emergency
	return &cp, nil
}

func (s *fakeEmergencyStore) List(ctx context.Context, status string) ([]models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Emergency, 0)
	for _, emergency := range s.emergencies {
		if status == "" || emergency.Status == status {
			out = append(out, *emergency)
		}
	}
	return out, nil
}

func (s *fakeEmergencyStore) Update(ctx context.Context, emergencyID string, patch map[string]interface{}) (*models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emergency, ok := s.emergencies[emergencyID]
	if !ok {
		return nil, utils.NewNotFoundError("Emergency")
	}

	for key, value := range patch {
		switch key {
		case "status":
			emergency.Status = value.(string)
		case "resolvedAt":
			t := value.(time.Time)
			emergency.ResolvedAt = &t
		}
	}
	emergency.UpdatedAt = time.Now()

	cp := *emergency
	return &cp, nil
}

func (s *fakeEmergencyStore) AppendAssignedUnit(ctx context.Context, emergencyID string, entry models.AssignedUnit) (*models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emergency, ok := s.emergencies[emergencyID]
	if !ok {
		return nil, utils.NewNotFoundError("Emergency")
	}

	emergency.AssignedUnits = append(emergency.AssignedUnits, entry)
	emergency.UpdatedAt = time.Now()

	cp := *emergency
	return &cp, nil
}

func (s *fakeEmergencyStore) AppendNote(ctx context.Context, emergencyID string, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emergency, ok := s.emergencies[emergencyID]
	if !ok {
		return utils.NewNotFoundError("Emergency")
	}

	emergency.Notes = append(emergency.Notes, note)
	return nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	messages []models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (s *fakeMessageStore) Create(ctx context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	if message.MessageType == "" {
		message.MessageType = models.MessageTypeText
	}
	if message.Priority == "" {
		message.Priority = models.PriorityNormal
	}
	s.messages = append(s.messages, *message)
	return nil
}

func (s *fakeMessageStore) ListForIdentity(ctx context.Context, identityID string, limit int64) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, 0)
	for _, m := range s.messages {
		if m.From == identityID || m.To == identityID || m.To == "" {
			out = append(out, m)
		}
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (s *fakeMessageStore) MarkRead(ctx context.Context, messageID string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID.Hex() == messageID {
			s.messages[i].IsRead = true
			cp := s.messages[i]
			return &cp, nil
		}
	}
	return nil, utils.NewNotFoundError("Message")
}

func (s *fakeMessageStore) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := int64(len(s.messages))
	s.messages = nil
	return count, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	cp := *user
	s.users[user.ID.Hex()] = &cp
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("User")
	}
	cp := *user
	return &cp, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, utils.NewNotFoundError("User")
}

func (s *fakeUserStore) UpdateLastSeen(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return utils.NewNotFoundError("User")
	}
	user.LastSeen = time.Now()
	return nil
}

// fakeRouter records every delivery for assertion. SessionID is empty
// for broadcasts.
type routedEvent struct {
	SessionID string
	Event     string
	Data      interface{}
}

type fakeRouter struct {
	mu     sync.Mutex
	events []routedEvent
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{}
}

func (r *fakeRouter) Broadcast(event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, routedEvent{Event: event, Data: data})
}

func (r *fakeRouter) SendToSession(sessionID, event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, routedEvent{SessionID: sessionID, Event: event, Data: data})
}

func (r *fakeRouter) named(event string) []routedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]routedEvent, 0)
	for _, e := range r.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *fakeRouter) all() []routedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]routedEvent(nil), r.events...)
}

var _ interfaces.UnitStore = (*fakeUnitStore)(nil)
var _ interfaces.UserStore = (*fakeUserStore)(nil)
var _ interfaces.EmergencyStore = (*fakeEmergencyStore)(nil)
var _ interfaces.MessageStore = (*fakeMessageStore)(nil)
var _ interfaces.EventRouter = (*fakeRouter)(nil)
