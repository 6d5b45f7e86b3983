package repositories

import (
	"context"
	"taclink/models"
	"taclink/utils"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UnitRepository struct {
	collection *mongo.Collection
}

func NewUnitRepository(database *mongo.Database) *UnitRepository {
	return &UnitRepository{
		collection: database.Collection("units"),
	}
}

func (ur *UnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	unit.ID = primitive.NewObjectID()
	unit.CreatedAt = time.Now()
	unit.UpdatedAt = time.Now()

	if unit.Status == "" {
		unit.Status = models.UnitStatusAvailable
	}

	_, err := ur.collection.InsertOne(ctx, unit)
	if err != nil {
		logrus.Errorf("Failed to create unit %s: %v", unit.UnitID, err)
		return utils.NewDatabaseError("create unit", err)
	}

	return nil
}

func (ur *UnitRepository) GetByUnitID(ctx context.Context, unitID string) (*models.Unit, error) {
	return ur.findOne(ctx, bson.M{"unitId": unitID})
}

func (ur *UnitRepository) GetByUserID(ctx context.Context, userID string) (*models.Unit, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewValidationError("invalid user ID")
	}
	return ur.findOne(ctx, bson.M{"userId": userObjectID})
}

func (ur *UnitRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Unit, error) {
	return ur.findOne(ctx, bson.M{"sessionId": sessionID})
}

func (ur *UnitRepository) findOne(ctx context.Context, filter bson.M) (*models.Unit, error) {
	var unit models.Unit
	err := ur.collection.FindOne(ctx, filter).Decode(&unit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("Unit")
		}
		logrus.Errorf("Failed to get unit: %v", err)
		return nil, utils.NewDatabaseError("get unit", err)
	}
	return &unit, nil
}

func (ur *UnitRepository) List(ctx context.Context) ([]models.Unit, error) {
	return ur.find(ctx, bson.M{})
}

func (ur *UnitRepository) ListOnline(ctx context.Context) ([]models.Unit, error) {
	return ur.find(ctx, bson.M{"isOnline": true})
}

// ListStaleOnline returns units still flagged online whose last
// position update predates cutoff. The presence sweep worker flips
// these offline.
func (ur *UnitRepository) ListStaleOnline(ctx context.Context, cutoff time.Time) ([]models.Unit, error) {
	return ur.find(ctx, bson.M{
		"isOnline":             true,
		"position.lastUpdated": bson.M{"$lt": cutoff},
	})
}

func (ur *UnitRepository) find(ctx context.Context, filter bson.M) ([]models.Unit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "unitId", Value: 1}})
	cursor, err := ur.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("Failed to list units: %v", err)
		return nil, utils.NewDatabaseError("list units", err)
	}
	defer cursor.Close(ctx)

	var units []models.Unit
	if err = cursor.All(ctx, &units); err != nil {
		logrus.Errorf("Failed to decode units: %v", err)
		return nil, utils.NewDatabaseError("decode units", err)
	}

	return units, nil
}

// Update applies a field patch and returns the refreshed unit.
func (ur *UnitRepository) Update(ctx context.Context, unitID string, patch map[string]interface{}) (*models.Unit, error) {
	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}
	for key, value := range patch {
		if value == nil {
			unset[key] = ""
			continue
		}
		set[key] = value
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var unit models.Unit
	err := ur.collection.FindOneAndUpdate(ctx, bson.M{"unitId": unitID}, update, opts).Decode(&unit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("Unit")
		}
		logrus.Errorf("Failed to update unit %s: %v", unitID, err)
		return nil, utils.NewDatabaseError("update unit", err)
	}

	return &unit, nil
}
