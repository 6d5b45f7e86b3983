package services

import (
	"context"
	"sync"
	"taclink/models"
	"taclink/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMarksOnlineAndBroadcasts(t *testing.T) {
	store := newFakeUnitStore(models.Unit{
		UnitID:   "RESCUE-01",
		UnitType: models.UnitTypeRescue,
		Status:   models.UnitStatusAvailable,
	})
	router := newFakeRouter()
	presence := NewPresenceService(store, router, nil)

	unit, err := presence.Register(context.Background(), "RESCUE-01", "session-1")
	require.NoError(t, err)

	assert.True(t, unit.IsOnline)
	assert.Equal(t, "session-1", unit.SessionID)

	events := router.named(models.WSEventUnitOnline)
	require.Len(t, events, 1)
	payload := events[0].Data.(models.WSUnitOnline)
	assert.Equal(t, "RESCUE-01", payload.UnitID)
	assert.True(t, payload.IsOnline)
}

func TestRegisterUnknownUnit(t *testing.T) {
	presence := NewPresenceService(newFakeUnitStore(), newFakeRouter(), nil)

	_, err := presence.Register(context.Background(), "GHOST-01", "session-1")
	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
}

func TestUnregisterClearsSessionAndBroadcasts(t *testing.T) {
	store := newFakeUnitStore(models.Unit{
		UnitID:    "RESCUE-01",
		Status:    models.UnitStatusAvailable,
		IsOnline:  true,
		SessionID: "session-1",
	})
	router := newFakeRouter()
	presence := NewPresenceService(store, router, nil)

	presence.Unregister(context.Background(), "session-1")

	unit, err := store.GetByUnitID(context.Background(), "RESCUE-01")
	require.NoError(t, err)
	assert.False(t, unit.IsOnline)
	assert.Empty(t, unit.SessionID)

	events := router.named(models.WSEventUnitOffline)
	require.Len(t, events, 1)
	assert.Equal(t, "RESCUE-01", events[0].Data.(models.WSUnitOffline).UnitID)
}

func TestUnregisterUnknownSessionIsNoOp(t *testing.T) {
	router := newFakeRouter()
	presence := NewPresenceService(newFakeUnitStore(), router, nil)

	presence.Unregister(context.Background(), "never-registered")

	assert.Empty(t, router.all())
}

func TestUpdatePositionImplicitlyMarksOnline(t *testing.T) {
	store := newFakeUnitStore(models.Unit{
		UnitID: "RESCUE-01",
		Status: models.UnitStatusAvailable,
	})
	router := newFakeRouter()
	presence := NewPresenceService(store, router, nil)

	unit, err := presence.UpdatePosition(context.Background(), "RESCUE-01", -6.2, 106.8)
	require.NoError(t, err)

	assert.True(t, unit.IsOnline)
	assert.Equal(t, -6.2, unit.Position.Latitude)
	assert.Equal(t, 106.8, unit.Position.Longitude)
	assert.False(t, unit.Position.LastUpdated.IsZero())

	events := router.named(models.WSEventPositionUpdated)
	require.Len(t, events, 1)
	payload := events[0].Data.(models.WSPositionUpdated)
	assert.Equal(t, "RESCUE-01", payload.UnitID)
	assert.Equal(t, -6.2, payload.Position.Latitude)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	store := newFakeUnitStore(models.Unit{
		UnitID: "RESCUE-01",
		Status: models.UnitStatusAvailable,
	})
	presence := NewPresenceService(store, newFakeRouter(), nil)

	_, err := presence.SetStatus(context.Background(), "RESCUE-01", "on-fire")
	require.Error(t, err)

	se, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeValidation, se.Code)

	// Stored status untouched.
	unit, err := store.GetByUnitID(context.Background(), "RESCUE-01")
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusAvailable, unit.Status)
}

func TestMarkAssignedAndRelease(t *testing.T) {
	store := newFakeUnitStore(models.Unit{
		UnitID: "RESCUE-01",
		Status: models.UnitStatusAvailable,
	})
	presence := NewPresenceService(store, newFakeRouter(), nil)

	unit, err := presence.MarkAssigned(context.Background(), "RESCUE-01", "EMG-100")
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusBusy, unit.Status)
	assert.Equal(t, "EMG-100", unit.AssignedEmergency)

	require.NoError(t, presence.Release(context.Background(), "RESCUE-01"))

	unit, err = store.GetByUnitID(context.Background(), "RESCUE-01")
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusAvailable, unit.Status)
	assert.Empty(t, unit.AssignedEmergency)
}

func TestMarkOfflineBroadcasts(t *testing.T) {
	store := newFakeUnitStore(models.Unit{
		UnitID:    "RESCUE-01",
		IsOnline:  true,
		SessionID: "session-1",
		Position:  models.Position{LastUpdated: time.Now().Add(-time.Hour)},
	})
	router := newFakeRouter()
	presence := NewPresenceService(store, router, nil)

	stale, err := presence.ListStale(context.Background(), time.Now().Add(-5*time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)

	require.NoError(t, presence.MarkOffline(context.Background(), stale[0].UnitID))

	unit, err := store.GetByUnitID(context.Background(), "RESCUE-01")
	require.NoError(t, err)
	assert.False(t, unit.IsOnline)
	assert.Empty(t, unit.SessionID)

	require.Len(t, router.named(models.WSEventUnitOffline), 1)
}

func TestConcurrentPositionAndAssignmentWrites(t *testing.T) {
	store := newFakeUnitStore(models.Unit{
		UnitID: "RESCUE-01",
		Status: models.UnitStatusAvailable,
	})
	presence := NewPresenceService(store, newFakeRouter(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			presence.UpdatePosition(context.Background(), "RESCUE-01", -6.2, 106.8)
		}()
		go func() {
			defer wg.Done()
			presence.MarkAssigned(context.Background(), "RESCUE-01", "EMG-100")
		}()
	}
	wg.Wait()

	unit, err := store.GetByUnitID(context.Background(), "RESCUE-01")
	require.NoError(t, err)
	assert.True(t, unit.IsOnline)
	assert.Equal(t, models.UnitStatusBusy, unit.Status)
	assert.Equal(t, "EMG-100", unit.AssignedEmergency)
}
