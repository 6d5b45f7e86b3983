package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Emergency types
const (
	EmergencyTypeMedical  = "medical"
	EmergencyTypeFire     = "fire"
	EmergencyTypeCrime    = "crime"
	EmergencyTypeAccident = "accident"
	EmergencyTypeDisaster = "disaster"
)

// Emergency severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Emergency lifecycle statuses
const (
	EmergencyStatusPending    = "pending"
	EmergencyStatusAssigned   = "assigned"
	EmergencyStatusInProgress = "in-progress"
	EmergencyStatusResolved   = "resolved"
	EmergencyStatusCancelled  = "cancelled"
)

// Assignment roles
const (
	AssignmentRolePrimary = "primary"
	AssignmentRoleSupport = "support"
)

type Emergency struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmergencyID string             `bson:"emergencyId" json:"emergencyId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Type        string             `bson:"type" json:"type"`
	Severity    string             `bson:"severity" json:"severity"`
	Location    EmergencyLocation  `bson:"location" json:"location"`
	Status      string             `bson:"status" json:"status"`

	// Set for authenticated reports; empty for public ones.
	ReportedBy string `bson:"reportedBy,omitempty" json:"reportedBy,omitempty"`

	// Set for publicly submitted reports.
	ReporterContact *ReporterContact `bson:"reporterContact,omitempty" json:"reporterContact,omitempty"`

	AssignedUnits []AssignedUnit `bson:"assignedUnits" json:"assignedUnits"`
	Photos        []string       `bson:"photos,omitempty" json:"photos,omitempty"`
	Notes         []string       `bson:"notes" json:"notes"`

	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updatedAt"`
	ResolvedAt *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

type EmergencyLocation struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

type ReporterContact struct {
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// AssignedUnit is an ordered entry in an emergency's assignment list.
// UnitID is a weak reference, never an owning link.
type AssignedUnit struct {
	UnitID     string    `bson:"unitId" json:"unitId"`
	Role       string    `bson:"role" json:"role"`
	AssignedAt time.Time `bson:"assignedAt" json:"assignedAt"`
}

// allowedTransitions is the lifecycle adjacency set. Resolved and
// cancelled are terminal.
var allowedTransitions = map[string][]string{
	EmergencyStatusPending:    {EmergencyStatusAssigned, EmergencyStatusCancelled},
	EmergencyStatusAssigned:   {EmergencyStatusInProgress, EmergencyStatusCancelled},
	EmergencyStatusInProgress: {EmergencyStatusResolved},
}

// CanTransition reports whether from -> to is an allowed lifecycle move.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsValidEmergencyType(t string) bool {
	switch t {
	case EmergencyTypeMedical, EmergencyTypeFire, EmergencyTypeCrime,
		EmergencyTypeAccident, EmergencyTypeDisaster:
		return true
	}
	return false
}

func IsValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

func IsValidEmergencyStatus(s string) bool {
	switch s {
	case EmergencyStatusPending, EmergencyStatusAssigned, EmergencyStatusInProgress,
		EmergencyStatusResolved, EmergencyStatusCancelled:
		return true
	}
	return false
}

// ReportLocation carries the coordinates of an incoming report.
// Pointers distinguish an absent coordinate from an explicit zero, so
// a report with no location fails validation instead of landing at
// (0,0).
type ReportLocation struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Address   string   `json:"address,omitempty"`
}

// Resolve converts a validated report location into the stored form.
func (rl ReportLocation) Resolve() EmergencyLocation {
	return EmergencyLocation{
		Latitude:  *rl.Latitude,
		Longitude: *rl.Longitude,
		Address:   rl.Address,
	}
}

type ReportEmergencyRequest struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Type        string         `json:"type" validate:"required,emergency_type"`
	Severity    string         `json:"severity" validate:"required,severity"`
	Location    ReportLocation `json:"location"`
	Photos      []string       `json:"photos,omitempty"`
}

type PublicReportRequest struct {
	Title         string         `json:"title" validate:"required"`
	Description   string         `json:"description" validate:"required"`
	Type          string         `json:"type" validate:"required,emergency_type"`
	Severity      string         `json:"severity" validate:"required,severity"`
	Location      ReportLocation `json:"location"`
	ReporterName  string         `json:"reporterName,omitempty"`
	ReporterPhone string         `json:"reporterPhone,omitempty"`
	ReporterEmail string         `json:"reporterEmail,omitempty" validate:"omitempty,email"`
	Photos        []string       `json:"photos,omitempty"`
}

type UpdateEmergencyStatusRequest struct {
	Status string `json:"status" validate:"required,emergency_status"`
	Notes  string `json:"notes,omitempty"`
}

type AssignUnitRequest struct {
	EmergencyID string `json:"emergencyId" validate:"required"`
	UnitID      string `json:"unitId" validate:"required"`
	Role        string `json:"role,omitempty" validate:"omitempty,assignment_role"`
}

// AssignmentResult is what the dispatch coordinator reports back after
// a successful assignment.
type AssignmentResult struct {
	Emergency  *Emergency `json:"emergency"`
	Unit       *Unit      `json:"unit"`
	Role       string     `json:"role"`
	DistanceKm float64    `json:"distance"`
	ETAMinutes int        `json:"eta"`
}
