package controllers

import (
	"taclink/models"
	"taclink/services"
	"taclink/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UnitController struct {
	presenceService *services.PresenceService
}

func NewUnitController(presenceService *services.PresenceService) *UnitController {
	return &UnitController{
		presenceService: presenceService,
	}
}

// ListUnits returns every known unit. Pass online=true to restrict to
// units currently connected.
func (uc *UnitController) ListUnits(c *gin.Context) {
	onlineOnly := c.Query("online") == "true"

	var (
		units []models.Unit
		err   error
	)
	if onlineOnly {
		units, err = uc.presenceService.SnapshotAll(c.Request.Context())
	} else {
		units, err = uc.presenceService.ListAll(c.Request.Context())
	}
	if err != nil {
		logrus.Errorf("Failed to list units: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Units retrieved", units)
}

// GetUnit returns a single unit by its callsign.
func (uc *UnitController) GetUnit(c *gin.Context) {
	unitID := c.Param("unitId")
	if unitID == "" {
		utils.BadRequestResponse(c, "Unit ID is required")
		return
	}

	unit, err := uc.presenceService.Get(c.Request.Context(), unitID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Unit retrieved", unit)
}

// UpdateStatus changes a unit's operational status.
func (uc *UnitController) UpdateStatus(c *gin.Context) {
	unitID := c.Param("unitId")
	if unitID == "" {
		utils.BadRequestResponse(c, "Unit ID is required")
		return
	}

	var req models.UpdateUnitStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	unit, err := uc.presenceService.SetStatus(c.Request.Context(), unitID, req.Status)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Unit status updated", unit)
}
