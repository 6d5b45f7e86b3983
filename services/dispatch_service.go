package services

import (
	"context"
	"taclink/interfaces"
	"taclink/models"
	"taclink/utils"
	"time"

	"github.com/sirupsen/logrus"
)

// DispatchService is the assignment coordinator: it validates both
// records, mutates emergency and unit consistently, and fans out the
// resulting events. Emergency writes go through the lifecycle service
// so its per-emergency lock covers them; a terminal emergency rejects
// the assignment. Re-assigning an already-assigned emergency appends
// another unit, and assigning a busy unit overwrites its prior link.
type DispatchService struct {
	lifecycle *EmergencyService
	units     interfaces.UnitStore
	presence  *PresenceService
	matcher   *MatcherService
	router    interfaces.EventRouter

	// Radius for the advisory nearby-resources search.
	searchRadiusKm float64
}

func NewDispatchService(
	lifecycle *EmergencyService,
	units interfaces.UnitStore,
	presence *PresenceService,
	matcher *MatcherService,
	router interfaces.EventRouter,
	searchRadiusKm float64,
) *DispatchService {
	if searchRadiusKm <= 0 {
		searchRadiusKm = DefaultSearchRadiusKm
	}
	return &DispatchService{
		lifecycle:      lifecycle,
		units:          units,
		presence:       presence,
		matcher:        matcher,
		router:         router,
		searchRadiusKm: searchRadiusKm,
	}
}

// Assign attaches a unit to an emergency in the given role (primary
// when empty). Both lookups happen before any mutation, so a NotFound
// on either side leaves both records untouched.
func (ds *DispatchService) Assign(ctx context.Context, emergencyID, unitID, role string) (*models.AssignmentResult, error) {
	if role == "" {
		role = models.AssignmentRolePrimary
	}
	if role != models.AssignmentRolePrimary && role != models.AssignmentRoleSupport {
		return nil, utils.NewValidationError("invalid assignment role: " + role)
	}

	emergency, err := ds.lifecycle.Get(ctx, emergencyID)
	if err != nil {
		return nil, err
	}

	unit, err := ds.units.GetByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}

	updatedEmergency, err := ds.lifecycle.AttachUnit(ctx, emergencyID, models.AssignedUnit{
		UnitID:     unitID,
		Role:       role,
		AssignedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	updatedUnit, err := ds.presence.MarkAssigned(ctx, unitID, emergencyID)
	if err != nil {
		logrus.Errorf("Failed to mark unit %s busy for emergency %s: %v", unitID, emergencyID, err)
		return nil, err
	}

	distance := utils.DistanceKm(
		emergency.Location.Latitude, emergency.Location.Longitude,
		unit.Position.Latitude, unit.Position.Longitude,
	)
	eta := utils.EstimateETAMinutes(distance)

	ds.notify(ctx, updatedEmergency, updatedUnit, role, distance, eta)

	logrus.Infof("Unit %s assigned to %s as %s (%.2f km away)", unitID, emergencyID, role, distance)

	return &models.AssignmentResult{
		Emergency:  updatedEmergency,
		Unit:       updatedUnit,
		Role:       role,
		DistanceKm: distance,
		ETAMinutes: eta,
	}, nil
}

func (ds *DispatchService) notify(ctx context.Context, emergency *models.Emergency, unit *models.Unit, role string, distance float64, eta int) {
	// The assigned unit gets the full record plus the advisory list of
	// nearby backup resources, if it still has a live session.
	if unit.SessionID != "" {
		ds.router.SendToSession(unit.SessionID, models.WSEventEmergencyAssigned, models.WSEmergencyAssigned{
			Emergency: emergency,
			Role:      role,
		})

		nearby, err := ds.matcher.FindEligible(ctx,
			emergency.Location.Latitude, emergency.Location.Longitude,
			unit.UnitID, ds.searchRadiusKm)
		if err != nil {
			logrus.Warnf("Failed to find nearby resources for %s: %v", emergency.EmergencyID, err)
		} else {
			ds.router.SendToSession(unit.SessionID, models.WSEventNearbyResources, nearby)
		}
	}

	// Command UIs use this broadcast for confirmation.
	ds.router.Broadcast(models.WSEventUnitAssigned, models.WSUnitAssigned{
		EmergencyID: emergency.EmergencyID,
		UnitID:      unit.UnitID,
		Role:        role,
		DistanceKm:  distance,
		ETAMinutes:  eta,
	})
}
