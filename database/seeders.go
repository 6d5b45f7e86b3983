package database

import (
	"context"
	"taclink/models"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Seeder represents a database seeder
type Seeder struct {
	Name        string
	Description string
	Seed        func(*mongo.Database) error
}

var seeders = []Seeder{
	{
		Name:        "demo_command",
		Description: "Create a demo command account",
		Seed:        seedDemoCommand,
	},
	{
		Name:        "demo_units",
		Description: "Create demo field units",
		Seed:        seedDemoUnits,
	},
}

// RunSeeders executes all database seeders
func RunSeeders(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Check if seeders have already been run
	seedersCol := db.Collection("seeders")
	count, err := seedersCol.CountDocuments(ctx, bson.M{})
	if err == nil && count > 0 {
		logrus.Info("Seeders already run, skipping")
		return nil
	}

	logrus.Info("Running database seeders")

	for _, seeder := range seeders {
		logrus.Infof("Running seeder: %s", seeder.Name)

		if err := seeder.Seed(db); err != nil {
			logrus.Errorf("Seeder %s failed: %v", seeder.Name, err)
			continue // Continue with other seeders
		}

		_, err := seedersCol.InsertOne(ctx, bson.M{
			"name":      seeder.Name,
			"createdAt": time.Now(),
		})
		if err != nil {
			logrus.Warnf("Failed to record seeder %s: %v", seeder.Name, err)
		}
	}

	return nil
}

func seedDemoCommand(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	usersCol := db.Collection("users")

	count, err := usersCol.CountDocuments(ctx, bson.M{"email": "command@taclink.local"})
	if err == nil && count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("command123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = usersCol.InsertOne(ctx, models.User{
		ID:        primitive.NewObjectID(),
		Name:      "Command Center",
		Email:     "command@taclink.local",
		Password:  string(hashed),
		Role:      models.RoleCommand,
		IsActive:  true,
		LastSeen:  now,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}

func seedDemoUnits(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	unitsCol := db.Collection("units")

	count, err := unitsCol.CountDocuments(ctx, bson.M{})
	if err == nil && count > 0 {
		return nil
	}

	now := time.Now()
	demo := []interface{}{
		models.Unit{
			ID:        primitive.NewObjectID(),
			UnitID:    "RESCUE-01",
			UnitType:  models.UnitTypeRescue,
			Status:    models.UnitStatusAvailable,
			Resources: models.DefaultResources(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		models.Unit{
			ID:        primitive.NewObjectID(),
			UnitID:    "AMBO-01",
			UnitType:  models.UnitTypeAmbulance,
			Status:    models.UnitStatusAvailable,
			Resources: models.DefaultResources(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		models.Unit{
			ID:        primitive.NewObjectID(),
			UnitID:    "FIRE-01",
			UnitType:  models.UnitTypeFire,
			Status:    models.UnitStatusAvailable,
			Resources: models.DefaultResources(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	_, err = unitsCol.InsertMany(ctx, demo)
	return err
}
