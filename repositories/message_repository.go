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

type MessageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(database *mongo.Database) *MessageRepository {
	return &MessageRepository{
		collection: database.Collection("messages"),
	}
}

func (mr *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()

	if message.MessageType == "" {
		message.MessageType = models.MessageTypeText
	}
	if message.Priority == "" {
		message.Priority = models.PriorityNormal
	}

	_, err := mr.collection.InsertOne(ctx, message)
	if err != nil {
		logrus.Errorf("Failed to create message from %s: %v", message.From, err)
		return utils.NewDatabaseError("create message", err)
	}

	return nil
}

// ListForIdentity returns messages sent by, addressed to, or broadcast
// past the identity, newest first.
func (mr *MessageRepository) ListForIdentity(ctx context.Context, identityID string, limit int64) ([]models.Message, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"from": identityID},
			{"to": identityID},
			{"to": bson.M{"$exists": false}},
			{"to": ""},
		},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := mr.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("Failed to list messages for %s: %v", identityID, err)
		return nil, utils.NewDatabaseError("list messages", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		logrus.Errorf("Failed to decode messages: %v", err)
		return nil, utils.NewDatabaseError("decode messages", err)
	}

	return messages, nil
}

func (mr *MessageRepository) MarkRead(ctx context.Context, messageID string) (*models.Message, error) {
	objectID, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, utils.NewValidationError("invalid message ID")
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var message models.Message
	err = mr.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"isRead": true}},
		opts,
	).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("Message")
		}
		logrus.Errorf("Failed to mark message %s read: %v", messageID, err)
		return nil, utils.NewDatabaseError("mark message read", err)
	}

	return &message, nil
}

// DeleteAll is the administrative purge. Hard delete, no undo.
func (mr *MessageRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := mr.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		logrus.Errorf("Failed to clear messages: %v", err)
		return 0, utils.NewDatabaseError("clear messages", err)
	}

	return result.DeletedCount, nil
}
