package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AOladipo/thriftcircle_backend/config"
	"github.com/AOladipo/thriftcircle_backend/models"
)

type WithdrawalRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error)
	Insert(ctx context.Context, w *models.Withdrawal) error
	Update(ctx context.Context, w *models.Withdrawal) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Withdrawal, error)
	FindPendingByUser(ctx context.Context, userID primitive.ObjectID) (*models.Withdrawal, error)
	FindAll(ctx context.Context) ([]models.Withdrawal, error)
}

type mongoWithdrawalRepository struct {
	collection *mongo.Collection
}

func NewWithdrawalRepository(db *mongo.Client) WithdrawalRepository {
	return &mongoWithdrawalRepository{collection: config.GetCollection(db, "withdrawals")}
}

func (r *mongoWithdrawalRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *mongoWithdrawalRepository) Insert(ctx context.Context, w *models.Withdrawal) error {
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, w)
	return err
}

func (r *mongoWithdrawalRepository) Update(ctx context.Context, w *models.Withdrawal) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": w.ID}, bson.M{
		"$set": bson.M{
			"status":      w.Status,
			"confirmed":   w.Confirmed,
			"confirmedAt": w.ConfirmedAt,
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoWithdrawalRepository) find(ctx context.Context, filter bson.M) ([]models.Withdrawal, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	withdrawals := []models.Withdrawal{}
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (r *mongoWithdrawalRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Withdrawal, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

// FindPendingByUser returns the member's open withdrawal, or ErrNotFound.
// At most one can be pending at a time.
func (r *mongoWithdrawalRepository) FindPendingByUser(ctx context.Context, userID primitive.ObjectID) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.collection.FindOne(ctx, bson.M{
		"userId": userID,
		"status": models.WithdrawalPending,
	}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *mongoWithdrawalRepository) FindAll(ctx context.Context) ([]models.Withdrawal, error) {
	return r.find(ctx, bson.M{})
}
