package interfaces

import (
	"context"
	"taclink/models"
	"time"
)

// Store interfaces decouple the engine from the persistence
// collaborator so the coordination logic can be exercised against
// in-memory fakes. The Mongo repositories are the production
// implementations.

type UnitStore interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByUnitID(ctx context.Context, unitID string) (*models.Unit, error)
	GetByUserID(ctx context.Context, userID string) (*models.Unit, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Unit, error)
	List(ctx context.Context) ([]models.Unit, error)
	ListOnline(ctx context.Context) ([]models.Unit, error)
	ListStaleOnline(ctx context.Context, cutoff time.Time) ([]models.Unit, error)

	// Update applies an equality patch to the unit identified by
	// unitID and returns the refreshed record, or a not-found error.
	Update(ctx context.Context, unitID string, patch map[string]interface{}) (*models.Unit, error)
}

type EmergencyStore interface {
	Create(ctx context.Context, emergency *models.Emergency) error
	GetByEmergencyID(ctx context.Context, emergencyID string) (*models.Emergency, error)
	List(ctx context.Context, status string) ([]models.Emergency, error)
	Update(ctx context.Context, emergencyID string, patch map[string]interface{}) (*models.Emergency, error)

	// AppendAssignedUnit adds an assignment entry additively; two
	// concurrent appends must both survive.
	AppendAssignedUnit(ctx context.Context, emergencyID string, entry models.AssignedUnit) (*models.Emergency, error)
	AppendNote(ctx context.Context, emergencyID string, note string) error
}

type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	ListForIdentity(ctx context.Context, identityID string, limit int64) ([]models.Message, error)
	MarkRead(ctx context.Context, messageID string) (*models.Message, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastSeen(ctx context.Context, id string) error
}

// EventRouter is the delivery layer: point-to-point to a session
// handle or fan-out to every connected session. Both are best effort;
// a stale session handle is a silent no-op.
type EventRouter interface {
	SendToSession(sessionID, event string, data interface{})
	Broadcast(event string, data interface{})
}
