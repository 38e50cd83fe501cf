package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AOladipo/thriftcircle_backend/config"
	"github.com/AOladipo/thriftcircle_backend/models"
)

const notificationHistoryLimit = 100

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Client) NotificationRepository {
	return &mongoNotificationRepository{collection: config.GetCollection(db, "notifications")}
}

func (r *mongoNotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// FindByUser returns the member's notifications plus broadcast rows,
// newest first, capped at notificationHistoryLimit.
func (r *mongoNotificationRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	filter := bson.M{"$or": []bson.M{
		{"userId": userID},
		{"userId": primitive.NilObjectID},
	}}
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(notificationHistoryLimit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	return err
}
