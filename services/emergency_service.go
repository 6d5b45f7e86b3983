package services

import (
	"context"
	"fmt"
	"sync"
	"taclink/interfaces"
	"taclink/models"
	"taclink/utils"
	"time"

	"github.com/sirupsen/logrus"
)

// EmergencyService drives an emergency through its lifecycle:
// pending -> assigned -> in-progress -> resolved, with cancelled
// reachable from pending or assigned. Per-emergency writes serialize
// through a mutation key so concurrent appends never lose entries.
type EmergencyService struct {
	emergencies interfaces.EmergencyStore
	presence    *PresenceService
	router      interfaces.EventRouter
	validator   *utils.ValidationService
	keys        *utils.KeyMutex

	// Guards emergency ID generation so IDs stay strictly monotonic
	// even when two reports land in the same millisecond.
	idMu   sync.Mutex
	lastID int64
}

func NewEmergencyService(
	emergencies interfaces.EmergencyStore,
	presence *PresenceService,
	router interfaces.EventRouter,
) *EmergencyService {
	return &EmergencyService{
		emergencies: emergencies,
		presence:    presence,
		router:      router,
		validator:   utils.NewValidationService(),
		keys:        utils.NewKeyMutex(),
	}
}

// nextEmergencyID generates a time-based identifier, strictly
// increasing under single-writer creation.
func (es *EmergencyService) nextEmergencyID() string {
	es.idMu.Lock()
	defer es.idMu.Unlock()

	ms := time.Now().UnixMilli()
	if ms <= es.lastID {
		ms = es.lastID + 1
	}
	es.lastID = ms

	return fmt.Sprintf("EMG-%d", ms)
}

// Report creates an emergency from an authenticated reporter.
func (es *EmergencyService) Report(ctx context.Context, reportedBy string, req models.ReportEmergencyRequest) (*models.Emergency, error) {
	if validationErrors := es.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationErrorWithFields(utils.MissingFields(validationErrors))
	}
	if !utils.IsValidCoordinate(*req.Location.Latitude, *req.Location.Longitude) {
		return nil, utils.NewValidationError("invalid coordinates")
	}

	emergency := &models.Emergency{
		EmergencyID: es.nextEmergencyID(),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Severity:    req.Severity,
		Location:    req.Location.Resolve(),
		Status:      models.EmergencyStatusPending,
		ReportedBy:  reportedBy,
		Photos:      req.Photos,
	}

	return es.create(ctx, emergency)
}

// ReportPublic creates an emergency from an unauthenticated public
// reporter; no identity is required but required fields are enforced.
func (es *EmergencyService) ReportPublic(ctx context.Context, req models.PublicReportRequest) (*models.Emergency, error) {
	if validationErrors := es.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationErrorWithFields(utils.MissingFields(validationErrors))
	}
	if !utils.IsValidCoordinate(*req.Location.Latitude, *req.Location.Longitude) {
		return nil, utils.NewValidationError("invalid coordinates")
	}

	emergency := &models.Emergency{
		EmergencyID: es.nextEmergencyID(),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Severity:    req.Severity,
		Location:    req.Location.Resolve(),
		Status:      models.EmergencyStatusPending,
		Photos:      req.Photos,
	}

	if req.ReporterName != "" || req.ReporterPhone != "" || req.ReporterEmail != "" {
		emergency.ReporterContact = &models.ReporterContact{
			Name:  req.ReporterName,
			Phone: req.ReporterPhone,
			Email: req.ReporterEmail,
		}
	}

	return es.create(ctx, emergency)
}

func (es *EmergencyService) create(ctx context.Context, emergency *models.Emergency) (*models.Emergency, error) {
	if err := es.emergencies.Create(ctx, emergency); err != nil {
		return nil, err
	}

	es.router.Broadcast(models.WSEventNewEmergency, emergency)

	logrus.Infof("New emergency reported: %s (%s/%s)", emergency.EmergencyID, emergency.Type, emergency.Severity)
	return emergency, nil
}

// Transition moves an emergency to targetStatus, rejecting anything
// outside the lifecycle adjacency set. Transitioning to resolved sets
// resolvedAt exactly once and releases every assigned unit; release
// failures are logged and the remaining units still processed.
func (es *EmergencyService) Transition(ctx context.Context, emergencyID, targetStatus, notes string) (*models.Emergency, error) {
	if !models.IsValidEmergencyStatus(targetStatus) {
		return nil, utils.NewValidationError("invalid emergency status: " + targetStatus)
	}

	es.keys.Lock(emergencyID)
	defer es.keys.Unlock(emergencyID)

	emergency, err := es.emergencies.GetByEmergencyID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(emergency.Status, targetStatus) {
		return nil, utils.NewInvalidTransitionError(emergency.Status, targetStatus)
	}

	patch := map[string]interface{}{"status": targetStatus}
	if targetStatus == models.EmergencyStatusResolved {
		patch["resolvedAt"] = time.Now()
	}

	updated, err := es.emergencies.Update(ctx, emergencyID, patch)
	if err != nil {
		return nil, err
	}

	if notes != "" {
		if err := es.emergencies.AppendNote(ctx, emergencyID, notes); err != nil {
			logrus.Warnf("Failed to append note to emergency %s: %v", emergencyID, err)
		} else {
			updated.Notes = append(updated.Notes, notes)
		}
	}

	if targetStatus == models.EmergencyStatusResolved {
		es.releaseAssignedUnits(ctx, updated)
	}

	es.router.Broadcast(models.WSEventEmergencyStatusUpdated, models.WSEmergencyStatusUpdated{
		EmergencyID: emergencyID,
		Status:      updated.Status,
		ResolvedAt:  updated.ResolvedAt,
	})

	logrus.Infof("Emergency %s status updated to %s", emergencyID, targetStatus)
	return updated, nil
}

// AttachUnit appends an assignment entry and promotes a pending
// emergency to assigned. The status check, append and promote all
// happen inside the per-emergency critical section, so a concurrent
// cancel or resolve cannot interleave with them; a terminal emergency
// rejects the attach outright.
func (es *EmergencyService) AttachUnit(ctx context.Context, emergencyID string, entry models.AssignedUnit) (*models.Emergency, error) {
	es.keys.Lock(emergencyID)
	defer es.keys.Unlock(emergencyID)

	emergency, err := es.emergencies.GetByEmergencyID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}
	if emergency.Status == models.EmergencyStatusResolved || emergency.Status == models.EmergencyStatusCancelled {
		return nil, utils.NewInvalidTransitionError(emergency.Status, models.EmergencyStatusAssigned)
	}

	emergency, err = es.emergencies.AppendAssignedUnit(ctx, emergencyID, entry)
	if err != nil {
		return nil, err
	}

	if emergency.Status == models.EmergencyStatusPending {
		emergency, err = es.emergencies.Update(ctx, emergencyID, map[string]interface{}{
			"status": models.EmergencyStatusAssigned,
		})
		if err != nil {
			return nil, err
		}
	}

	return emergency, nil
}

// releaseAssignedUnits frees every unit on the emergency. Collect and
// continue: one failed release must not strand the rest.
func (es *EmergencyService) releaseAssignedUnits(ctx context.Context, emergency *models.Emergency) {
	for _, assigned := range emergency.AssignedUnits {
		if err := es.presence.Release(ctx, assigned.UnitID); err != nil {
			logrus.Errorf("Failed to release unit %s from emergency %s: %v",
				assigned.UnitID, emergency.EmergencyID, err)
		}
	}
}

func (es *EmergencyService) Get(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	return es.emergencies.GetByEmergencyID(ctx, emergencyID)
}

func (es *EmergencyService) List(ctx context.Context, status string) ([]models.Emergency, error) {
	if status != "" && !models.IsValidEmergencyStatus(status) {
		return nil, utils.NewValidationError("invalid emergency status: " + status)
	}
	return es.emergencies.List(ctx, status)
}
