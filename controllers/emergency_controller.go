package controllers

import (
	"taclink/models"
	"taclink/services"
	"taclink/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type EmergencyController struct {
	emergencyService *services.EmergencyService
	dispatchService  *services.DispatchService
}

func NewEmergencyController(emergencyService *services.EmergencyService, dispatchService *services.DispatchService) *EmergencyController {
	return &EmergencyController{
		emergencyService: emergencyService,
		dispatchService:  dispatchService,
	}
}

// ListEmergencies returns incidents, optionally filtered by status.
func (ec *EmergencyController) ListEmergencies(c *gin.Context) {
	status := c.Query("status")

	emergencies, err := ec.emergencyService.List(c.Request.Context(), status)
	if err != nil {
		logrus.Errorf("Failed to list emergencies: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergencies retrieved", emergencies)
}

// GetEmergency returns a single incident by its emergency ID.
func (ec *EmergencyController) GetEmergency(c *gin.Context) {
	emergencyID := c.Param("emergencyId")
	if emergencyID == "" {
		utils.BadRequestResponse(c, "Emergency ID is required")
		return
	}

	emergency, err := ec.emergencyService.Get(c.Request.Context(), emergencyID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency retrieved", emergency)
}

// ReportEmergency files an incident on behalf of the authenticated
// operator.
func (ec *EmergencyController) ReportEmergency(c *gin.Context) {
	var req models.ReportEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	userID := c.GetString("userID")

	emergency, err := ec.emergencyService.Report(c.Request.Context(), userID, req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Emergency reported", emergency)
}

// ReportPublic files an incident from an unauthenticated caller, for
// citizen reports coming through the public intake form.
func (ec *EmergencyController) ReportPublic(c *gin.Context) {
	var req models.PublicReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	emergency, err := ec.emergencyService.ReportPublic(c.Request.Context(), req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	logrus.Infof("Public emergency report accepted: %s", emergency.EmergencyID)
	utils.CreatedResponse(c, "Emergency reported", emergency)
}

// UpdateStatus moves an incident through its lifecycle.
func (ec *EmergencyController) UpdateStatus(c *gin.Context) {
	emergencyID := c.Param("emergencyId")
	if emergencyID == "" {
		utils.BadRequestResponse(c, "Emergency ID is required")
		return
	}

	var req models.UpdateEmergencyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	emergency, err := ec.emergencyService.Transition(c.Request.Context(), emergencyID, req.Status, req.Notes)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency status updated", emergency)
}

// AssignUnit dispatches a unit to an incident, command only.
func (ec *EmergencyController) AssignUnit(c *gin.Context) {
	emergencyID := c.Param("emergencyId")
	if emergencyID == "" {
		utils.BadRequestResponse(c, "Emergency ID is required")
		return
	}

	var req models.AssignUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result, err := ec.dispatchService.Assign(c.Request.Context(), emergencyID, req.UnitID, req.Role)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Unit assigned", result)
}
