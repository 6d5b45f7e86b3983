package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Unit types
const (
	UnitTypeAmbulance = "ambulance"
	UnitTypeFire      = "fire"
	UnitTypePolice    = "police"
	UnitTypeRescue    = "rescue"
)

// Unit operational statuses. Status is orthogonal to connectivity:
// a unit can be online and busy, or offline and still marked available.
const (
	UnitStatusAvailable = "available"
	UnitStatusBusy      = "busy"
	UnitStatusOffline   = "offline"
)

type Unit struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	UnitID    string             `bson:"unitId" json:"unitId"`
	UnitType  string             `bson:"unitType" json:"unitType"`
	Status    string             `bson:"status" json:"status"`
	Position  Position           `bson:"position" json:"position"`
	Resources UnitResources      `bson:"resources" json:"resources"`

	// Weak back-reference: emergencyId string, resolved on read.
	AssignedEmergency string `bson:"assignedEmergency,omitempty" json:"assignedEmergency,omitempty"`

	// Presence fields, owned exclusively by the presence service.
	// IsOnline=false implies SessionID is empty.
	IsOnline  bool   `bson:"isOnline" json:"isOnline"`
	SessionID string `bson:"sessionId,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Position struct {
	Latitude    float64   `bson:"latitude" json:"latitude"`
	Longitude   float64   `bson:"longitude" json:"longitude"`
	LastUpdated time.Time `bson:"lastUpdated" json:"lastUpdated"`
}

type UnitResources struct {
	Fuel      int      `bson:"fuel" json:"fuel"`
	Personnel int      `bson:"personnel" json:"personnel"`
	Equipment []string `bson:"equipment,omitempty" json:"equipment,omitempty"`
}

// DefaultResources is what a freshly registered unit starts with.
func DefaultResources() UnitResources {
	return UnitResources{Fuel: 100, Personnel: 4}
}

func IsValidUnitType(t string) bool {
	switch t {
	case UnitTypeAmbulance, UnitTypeFire, UnitTypePolice, UnitTypeRescue:
		return true
	}
	return false
}

func IsValidUnitStatus(s string) bool {
	switch s {
	case UnitStatusAvailable, UnitStatusBusy, UnitStatusOffline:
		return true
	}
	return false
}

type UpdateUnitStatusRequest struct {
	Status string `json:"status" validate:"required,unit_status"`
}

// NearbyUnit is the matcher's ranked output row.
type NearbyUnit struct {
	UnitID     string   `json:"unitId"`
	UnitType   string   `json:"unitType"`
	Position   Position `json:"position"`
	DistanceKm float64  `json:"distance"`
	ETAMinutes int      `json:"eta"`
}
