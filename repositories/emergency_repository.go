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

type EmergencyRepository struct {
	collection *mongo.Collection
}

func NewEmergencyRepository(database *mongo.Database) *EmergencyRepository {
	return &EmergencyRepository{
		collection: database.Collection("emergencies"),
	}
}

func (er *EmergencyRepository) Create(ctx context.Context, emergency *models.Emergency) error {
	emergency.ID = primitive.NewObjectID()
	emergency.CreatedAt = time.Now()
	emergency.UpdatedAt = time.Now()

	if emergency.Status == "" {
		emergency.Status = models.EmergencyStatusPending
	}
	if emergency.AssignedUnits == nil {
		emergency.AssignedUnits = []models.AssignedUnit{}
	}
	if emergency.Notes == nil {
		emergency.Notes = []string{}
	}

	_, err := er.collection.InsertOne(ctx, emergency)
	if err != nil {
		logrus.Errorf("Failed to create emergency %s: %v", emergency.EmergencyID, err)
		return utils.NewDatabaseError("create emergency", err)
	}

	return nil
}

func (er *EmergencyRepository) GetByEmergencyID(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	var emergency models.Emergency
	err := er.collection.FindOne(ctx, bson.M{"emergencyId": emergencyID}).Decode(&emergency)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("Emergency")
		}
		logrus.Errorf("Failed to get emergency %s: %v", emergencyID, err)
		return nil, utils.NewDatabaseError("get emergency", err)
	}
	return &emergency, nil
}

// List returns emergencies newest first, optionally filtered by status.
func (er *EmergencyRepository) List(ctx context.Context, status string) ([]models.Emergency, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := er.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("Failed to list emergencies: %v", err)
		return nil, utils.NewDatabaseError("list emergencies", err)
	}
	defer cursor.Close(ctx)

	var emergencies []models.Emergency
	if err = cursor.All(ctx, &emergencies); err != nil {
		logrus.Errorf("Failed to decode emergencies: %v", err)
		return nil, utils.NewDatabaseError("decode emergencies", err)
	}

	return emergencies, nil
}

func (er *EmergencyRepository) Update(ctx context.Context, emergencyID string, patch map[string]interface{}) (*models.Emergency, error) {
	set := bson.M{"updatedAt": time.Now()}
	for key, value := range patch {
		set[key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var emergency models.Emergency
	err := er.collection.FindOneAndUpdate(ctx, bson.M{"emergencyId": emergencyID}, bson.M{"$set": set}, opts).Decode(&emergency)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("Emergency")
		}
		logrus.Errorf("Failed to update emergency %s: %v", emergencyID, err)
		return nil, utils.NewDatabaseError("update emergency", err)
	}

	return &emergency, nil
}

// AppendAssignedUnit pushes an assignment entry. $push keeps
// concurrent appends additive instead of last-writer-wins.
func (er *EmergencyRepository) AppendAssignedUnit(ctx context.Context, emergencyID string, entry models.AssignedUnit) (*models.Emergency, error) {
	update := bson.M{
		"$push": bson.M{"assignedUnits": entry},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var emergency models.Emergency
	err := er.collection.FindOneAndUpdate(ctx, bson.M{"emergencyId": emergencyID}, update, opts).Decode(&emergency)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("Emergency")
		}
		logrus.Errorf("Failed to append assignment to emergency %s: %v", emergencyID, err)
		return nil, utils.NewDatabaseError("append assigned unit", err)
	}

	return &emergency, nil
}

func (er *EmergencyRepository) AppendNote(ctx context.Context, emergencyID string, note string) error {
	update := bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := er.collection.UpdateOne(ctx, bson.M{"emergencyId": emergencyID}, update)
	if err != nil {
		logrus.Errorf("Failed to append note to emergency %s: %v", emergencyID, err)
		return utils.NewDatabaseError("append note", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("Emergency")
	}

	return nil
}
