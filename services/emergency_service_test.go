package services

import (
	"context"
	"strings"
	"taclink/models"
	"taclink/utils"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmergencyFixture(emergencies ...models.Emergency) (*EmergencyService, *fakeEmergencyStore, *fakeUnitStore, *fakeRouter) {
	emergencyStore := newFakeEmergencyStore(emergencies...)
	unitStore := newFakeUnitStore()
	router := newFakeRouter()
	presence := NewPresenceService(unitStore, router, nil)
	service := NewEmergencyService(emergencyStore, presence, router)
	return service, emergencyStore, unitStore, router
}

func coord(v float64) *float64 {
	return &v
}

func validReport() models.ReportEmergencyRequest {
	return models.ReportEmergencyRequest{
		Title:       "Building collapse",
		Description: "Two-story structure down, people trapped",
		Type:        models.EmergencyTypeDisaster,
		Severity:    models.SeverityCritical,
		Location:    models.ReportLocation{Latitude: coord(-6.2), Longitude: coord(106.8), Address: "Jl. Sudirman 12"},
	}
}

func TestReportCreatesPendingAndBroadcasts(t *testing.T) {
	service, store, _, router := newEmergencyFixture()

	emergency, err := service.Report(context.Background(), "user-1", validReport())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(emergency.EmergencyID, "EMG-"))
	assert.Equal(t, models.EmergencyStatusPending, emergency.Status)
	assert.Equal(t, "user-1", emergency.ReportedBy)

	stored, err := store.GetByEmergencyID(context.Background(), emergency.EmergencyID)
	require.NoError(t, err)
	assert.Equal(t, emergency.Title, stored.Title)

	events := router.named(models.WSEventNewEmergency)
	require.Len(t, events, 1)
}

func TestReportGeneratesDistinctIDs(t *testing.T) {
	service, _, _, _ := newEmergencyFixture()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		emergency, err := service.Report(context.Background(), "user-1", validReport())
		require.NoError(t, err)
		assert.False(t, seen[emergency.EmergencyID], "duplicate emergency ID %s", emergency.EmergencyID)
		seen[emergency.EmergencyID] = true
	}
}

func TestReportRejectsMissingFields(t *testing.T) {
	service, _, _, router := newEmergencyFixture()

	req := validReport()
	req.Title = ""

	_, err := service.Report(context.Background(), "user-1", req)
	require.Error(t, err)

	se, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeValidation, se.Code)

	assert.Empty(t, router.all())
}

func TestReportRejectsBadCoordinates(t *testing.T) {
	service, _, _, _ := newEmergencyFixture()

	req := validReport()
	req.Location.Latitude = coord(91.0)

	_, err := service.Report(context.Background(), "user-1", req)
	require.Error(t, err)

	se, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeValidation, se.Code)
}

func TestReportRejectsAbsentLocation(t *testing.T) {
	// A report with no location at all must fail validation rather
	// than landing at (0,0). An explicit zero coordinate stays valid.
	service, _, _, router := newEmergencyFixture()

	req := validReport()
	req.Location = models.ReportLocation{}

	_, err := service.Report(context.Background(), "user-1", req)
	require.Error(t, err)

	se, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeValidation, se.Code)
	assert.Contains(t, se.Details, "Latitude")
	assert.Contains(t, se.Details, "Longitude")
	assert.Empty(t, router.all())

	_, err = service.ReportPublic(context.Background(), models.PublicReportRequest{
		Title:       "No location given",
		Description: "Caller could not say where",
		Type:        models.EmergencyTypeAccident,
		Severity:    models.SeverityHigh,
	})
	require.Error(t, err)
	se, ok = utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeValidation, se.Code)

	// Explicit (0,0) is a real coordinate and passes.
	req = validReport()
	req.Location.Latitude = coord(0)
	req.Location.Longitude = coord(0)

	emergency, err := service.Report(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.Zero(t, emergency.Location.Latitude)
	assert.Zero(t, emergency.Location.Longitude)
}

func TestReportPublicKeepsReporterContact(t *testing.T) {
	service, _, _, _ := newEmergencyFixture()

	emergency, err := service.ReportPublic(context.Background(), models.PublicReportRequest{
		Title:         "Road accident",
		Description:   "Motorbike and truck collision",
		Type:          models.EmergencyTypeAccident,
		Severity:      models.SeverityHigh,
		Location:      models.ReportLocation{Latitude: coord(-6.21), Longitude: coord(106.81)},
		ReporterName:  "Citizen A",
		ReporterPhone: "+628123456",
	})
	require.NoError(t, err)

	assert.Empty(t, emergency.ReportedBy)
	require.NotNil(t, emergency.ReporterContact)
	assert.Equal(t, "Citizen A", emergency.ReporterContact.Name)
}

func TestTransitionFollowsLifecycle(t *testing.T) {
	service, _, _, router := newEmergencyFixture(models.Emergency{
		EmergencyID: "EMG-1",
		Status:      models.EmergencyStatusPending,
	})

	steps := []string{
		models.EmergencyStatusAssigned,
		models.EmergencyStatusInProgress,
		models.EmergencyStatusResolved,
	}

	for _, next := range steps {
		updated, err := service.Transition(context.Background(), "EMG-1", next, "")
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	final, err := service.Get(context.Background(), "EMG-1")
	require.NoError(t, err)
	require.NotNil(t, final.ResolvedAt)

	events := router.named(models.WSEventEmergencyStatusUpdated)
	require.Len(t, events, len(steps))
	last := events[len(events)-1].Data.(models.WSEmergencyStatusUpdated)
	assert.Equal(t, models.EmergencyStatusResolved, last.Status)
	assert.NotNil(t, last.ResolvedAt)
}

func TestTransitionRejectsSkippingStates(t *testing.T) {
	service, store, _, router := newEmergencyFixture(models.Emergency{
		EmergencyID: "EMG-1",
		Status:      models.EmergencyStatusPending,
	})

	_, err := service.Transition(context.Background(), "EMG-1", models.EmergencyStatusResolved, "")
	require.Error(t, err)
	assert.True(t, utils.IsInvalidTransition(err))

	// State unchanged, nothing broadcast.
	stored, err := store.GetByEmergencyID(context.Background(), "EMG-1")
	require.NoError(t, err)
	assert.Equal(t, models.EmergencyStatusPending, stored.Status)
	assert.Nil(t, stored.ResolvedAt)
	assert.Empty(t, router.named(models.WSEventEmergencyStatusUpdated))
}

func TestTransitionRejectsLeavingTerminalState(t *testing.T) {
	service, _, _, _ := newEmergencyFixture(models.Emergency{
		EmergencyID: "EMG-1",
		Status:      models.EmergencyStatusResolved,
	})

	_, err := service.Transition(context.Background(), "EMG-1", models.EmergencyStatusInProgress, "")
	require.Error(t, err)
	assert.True(t, utils.IsInvalidTransition(err))
}

func TestTransitionCancelFromPendingAndAssigned(t *testing.T) {
	service, _, _, _ := newEmergencyFixture(
		models.Emergency{EmergencyID: "EMG-1", Status: models.EmergencyStatusPending},
		models.Emergency{EmergencyID: "EMG-2", Status: models.EmergencyStatusAssigned},
		models.Emergency{EmergencyID: "EMG-3", Status: models.EmergencyStatusInProgress},
	)

	_, err := service.Transition(context.Background(), "EMG-1", models.EmergencyStatusCancelled, "")
	require.NoError(t, err)

	_, err = service.Transition(context.Background(), "EMG-2", models.EmergencyStatusCancelled, "")
	require.NoError(t, err)

	// In-progress work cannot be cancelled, only resolved.
	_, err = service.Transition(context.Background(), "EMG-3", models.EmergencyStatusCancelled, "")
	require.Error(t, err)
	assert.True(t, utils.IsInvalidTransition(err))
}

func TestTransitionAppendsNotes(t *testing.T) {
	service, store, _, _ := newEmergencyFixture(models.Emergency{
		EmergencyID: "EMG-1",
		Status:      models.EmergencyStatusPending,
	})

	updated, err := service.Transition(context.Background(), "EMG-1", models.EmergencyStatusAssigned, "dispatching rescue")
	require.NoError(t, err)
	assert.Contains(t, updated.Notes, "dispatching rescue")

	stored, err := store.GetByEmergencyID(context.Background(), "EMG-1")
	require.NoError(t, err)
	assert.Contains(t, stored.Notes, "dispatching rescue")
}

func TestResolveReleasesEveryAssignedUnit(t *testing.T) {
	emergencyStore := newFakeEmergencyStore(models.Emergency{
		EmergencyID: "EMG-1",
		Status:      models.EmergencyStatusInProgress,
		AssignedUnits: []models.AssignedUnit{
			{UnitID: "RESCUE-01", Role: models.AssignmentRolePrimary},
			{UnitID: "FIRE-01", Role: models.AssignmentRoleSupport},
		},
	})
	unitStore := newFakeUnitStore(
		models.Unit{UnitID: "RESCUE-01", Status: models.UnitStatusBusy, AssignedEmergency: "EMG-1"},
		models.Unit{UnitID: "FIRE-01", Status: models.UnitStatusBusy, AssignedEmergency: "EMG-1"},
	)
	router := newFakeRouter()
	presence := NewPresenceService(unitStore, router, nil)
	service := NewEmergencyService(emergencyStore, presence, router)

	_, err := service.Transition(context.Background(), "EMG-1", models.EmergencyStatusResolved, "")
	require.NoError(t, err)

	for _, unitID := range []string{"RESCUE-01", "FIRE-01"} {
		unit, err := unitStore.GetByUnitID(context.Background(), unitID)
		require.NoError(t, err)
		assert.Equal(t, models.UnitStatusAvailable, unit.Status, "unit %s should be released", unitID)
		assert.Empty(t, unit.AssignedEmergency)
	}
}

func TestResolveSurvivesMissingUnit(t *testing.T) {
	// One assigned unit no longer exists; the other must still be
	// released.
	emergencyStore := newFakeEmergencyStore(models.Emergency{
		EmergencyID: "EMG-1",
		Status:      models.EmergencyStatusInProgress,
		AssignedUnits: []models.AssignedUnit{
			{UnitID: "GHOST-01", Role: models.AssignmentRolePrimary},
			{UnitID: "FIRE-01", Role: models.AssignmentRoleSupport},
		},
	})
	unitStore := newFakeUnitStore(
		models.Unit{UnitID: "FIRE-01", Status: models.UnitStatusBusy, AssignedEmergency: "EMG-1"},
	)
	router := newFakeRouter()
	presence := NewPresenceService(unitStore, router, nil)
	service := NewEmergencyService(emergencyStore, presence, router)

	updated, err := service.Transition(context.Background(), "EMG-1", models.EmergencyStatusResolved, "")
	require.NoError(t, err)
	assert.Equal(t, models.EmergencyStatusResolved, updated.Status)

	unit, err := unitStore.GetByUnitID(context.Background(), "FIRE-01")
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusAvailable, unit.Status)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	service, _, _, _ := newEmergencyFixture()

	_, err := service.List(context.Background(), "exploded")
	require.Error(t, err)

	se, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeValidation, se.Code)
}
