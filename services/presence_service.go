package services

import (
	"context"
	"fmt"
	"taclink/interfaces"
	"taclink/models"
	"taclink/utils"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const lastSeenTTL = 10 * time.Minute

// PresenceService is the presence registry: it exclusively owns the
// online/session fields of every unit, and is the only sanctioned
// writer of unit status and assignment back-references. All mutations
// for a given unitId go through the per-unit mutation key, so a
// unit's own position updates cannot interleave with command-driven
// assignment writes.
type PresenceService struct {
	units  interfaces.UnitStore
	router interfaces.EventRouter
	keys   *utils.KeyMutex
	redis  *redis.Client
}

func NewPresenceService(units interfaces.UnitStore, router interfaces.EventRouter, redisClient *redis.Client) *PresenceService {
	return &PresenceService{
		units:  units,
		router: router,
		keys:   utils.NewKeyMutex(),
		redis:  redisClient,
	}
}

// Register marks the unit online and binds the session handle. The
// refreshed snapshot (including any assigned emergency back-reference)
// is returned so the caller can seed its UI state. An unknown unitId
// is reported, not retried.
func (ps *PresenceService) Register(ctx context.Context, unitID, sessionID string) (*models.Unit, error) {
	ps.keys.Lock(unitID)
	defer ps.keys.Unlock(unitID)

	unit, err := ps.units.Update(ctx, unitID, map[string]interface{}{
		"isOnline":  true,
		"sessionId": sessionID,
	})
	if err != nil {
		return nil, err
	}

	ps.touchLastSeen(ctx, unitID)

	ps.router.Broadcast(models.WSEventUnitOnline, models.WSUnitOnline{
		UnitID:            unit.UnitID,
		UnitType:          unit.UnitType,
		Status:            unit.Status,
		Position:          unit.Position,
		IsOnline:          true,
		Resources:         unit.Resources,
		AssignedEmergency: unit.AssignedEmergency,
	})

	logrus.Infof("Unit %s registered with session %s", unitID, sessionID)
	return unit, nil
}

// Unregister clears the online flag and session handle of whichever
// unit is bound to the session. A session with no bound unit is a
// no-op.
func (ps *PresenceService) Unregister(ctx context.Context, sessionID string) {
	unit, err := ps.units.GetBySessionID(ctx, sessionID)
	if err != nil {
		if !utils.IsNotFound(err) {
			logrus.Errorf("Presence unregister lookup failed: %v", err)
		}
		return
	}

	ps.keys.Lock(unit.UnitID)
	defer ps.keys.Unlock(unit.UnitID)

	_, err = ps.units.Update(ctx, unit.UnitID, map[string]interface{}{
		"isOnline":  false,
		"sessionId": nil,
	})
	if err != nil {
		logrus.Errorf("Failed to mark unit %s offline: %v", unit.UnitID, err)
		return
	}

	ps.router.Broadcast(models.WSEventUnitOffline, models.WSUnitOffline{UnitID: unit.UnitID})

	logrus.Infof("Unit %s went offline", unit.UnitID)
}

// UpdatePosition overwrites the unit's position. A position update is
// evidence of liveness, so the unit is implicitly marked online even
// absent an explicit register call.
func (ps *PresenceService) UpdatePosition(ctx context.Context, unitID string, lat, lon float64) (*models.Unit, error) {
	ps.keys.Lock(unitID)
	defer ps.keys.Unlock(unitID)

	unit, err := ps.units.Update(ctx, unitID, map[string]interface{}{
		"position": models.Position{
			Latitude:    lat,
			Longitude:   lon,
			LastUpdated: time.Now(),
		},
		"isOnline": true,
	})
	if err != nil {
		return nil, err
	}

	ps.touchLastSeen(ctx, unitID)

	ps.router.Broadcast(models.WSEventPositionUpdated, models.WSPositionUpdated{
		UnitID:   unit.UnitID,
		Position: unit.Position,
		Status:   unit.Status,
	})

	return unit, nil
}

// SetStatus sets the unit's operational status.
func (ps *PresenceService) SetStatus(ctx context.Context, unitID, status string) (*models.Unit, error) {
	if !models.IsValidUnitStatus(status) {
		return nil, utils.NewValidationError("invalid unit status: " + status)
	}

	ps.keys.Lock(unitID)
	defer ps.keys.Unlock(unitID)

	unit, err := ps.units.Update(ctx, unitID, map[string]interface{}{
		"status": status,
	})
	if err != nil {
		return nil, err
	}

	ps.router.Broadcast(models.WSEventPositionUpdated, models.WSPositionUpdated{
		UnitID:   unit.UnitID,
		Position: unit.Position,
		Status:   unit.Status,
	})

	return unit, nil
}

// MarkAssigned is the assignment coordinator's write path: flips the
// unit busy and points its weak back-reference at the emergency. An
// already-busy unit silently gets its prior link overwritten, which
// preserves the permissive multi-assignment behavior.
func (ps *PresenceService) MarkAssigned(ctx context.Context, unitID, emergencyID string) (*models.Unit, error) {
	ps.keys.Lock(unitID)
	defer ps.keys.Unlock(unitID)

	return ps.units.Update(ctx, unitID, map[string]interface{}{
		"status":            models.UnitStatusBusy,
		"assignedEmergency": emergencyID,
	})
}

// Release returns a unit to the available pool and clears its
// assignment back-reference. Used when an emergency resolves.
func (ps *PresenceService) Release(ctx context.Context, unitID string) error {
	ps.keys.Lock(unitID)
	defer ps.keys.Unlock(unitID)

	_, err := ps.units.Update(ctx, unitID, map[string]interface{}{
		"status":            models.UnitStatusAvailable,
		"assignedEmergency": nil,
	})
	return err
}

// SnapshotAll returns every online unit, used to seed a newly
// connected command session.
func (ps *PresenceService) SnapshotAll(ctx context.Context) ([]models.Unit, error) {
	return ps.units.ListOnline(ctx)
}

// ListAll returns every known unit, online or not.
func (ps *PresenceService) ListAll(ctx context.Context) ([]models.Unit, error) {
	return ps.units.List(ctx)
}

// Get looks up a single unit by callsign.
func (ps *PresenceService) Get(ctx context.Context, unitID string) (*models.Unit, error) {
	return ps.units.GetByUnitID(ctx, unitID)
}

// ListStale returns units still flagged online whose last position
// update predates the cutoff.
func (ps *PresenceService) ListStale(ctx context.Context, cutoff time.Time) ([]models.Unit, error) {
	return ps.units.ListStaleOnline(ctx, cutoff)
}

// MarkOffline flips a stale unit offline without a session lookup.
// Used by the presence sweep worker.
func (ps *PresenceService) MarkOffline(ctx context.Context, unitID string) error {
	ps.keys.Lock(unitID)
	defer ps.keys.Unlock(unitID)

	_, err := ps.units.Update(ctx, unitID, map[string]interface{}{
		"isOnline":  false,
		"sessionId": nil,
	})
	if err != nil {
		return err
	}

	ps.router.Broadcast(models.WSEventUnitOffline, models.WSUnitOffline{UnitID: unitID})
	return nil
}

func (ps *PresenceService) touchLastSeen(ctx context.Context, unitID string) {
	if ps.redis == nil {
		return
	}
	key := fmt.Sprintf("presence:lastseen:%s", unitID)
	if err := ps.redis.Set(ctx, key, time.Now().Unix(), lastSeenTTL).Err(); err != nil {
		logrus.Warnf("Failed to cache last seen for %s: %v", unitID, err)
	}
}
