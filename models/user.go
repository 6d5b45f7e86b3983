package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles
const (
	RoleCommand = "command"
	RoleNode    = "node"
)

// User is an operator account: command (dispatcher) or node (field
// unit operator). A node account owns exactly one Unit.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	LastSeen  time.Time          `bson:"lastSeen" json:"lastSeen"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func IsValidRole(r string) bool {
	return r == RoleCommand || r == RoleNode
}
