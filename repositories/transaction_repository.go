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

type TransactionRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	Insert(ctx context.Context, txn *models.Transaction) error
	Update(ctx context.Context, txn *models.Transaction) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error)
	FindPending(ctx context.Context) ([]models.Transaction, error)
	FindAll(ctx context.Context) ([]models.Transaction, error)
	FindCompletedByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Transaction, error)
	ArchiveCompletedForUser(ctx context.Context, userID primitive.ObjectID) error
}

type mongoTransactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Client) TransactionRepository {
	return &mongoTransactionRepository{collection: config.GetCollection(db, "transactions")}
}

func (r *mongoTransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&txn)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *mongoTransactionRepository) Insert(ctx context.Context, txn *models.Transaction) error {
	if txn.ID.IsZero() {
		txn.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, txn)
	return err
}

// Update persists the only fields that may change after insert.
func (r *mongoTransactionRepository) Update(ctx context.Context, txn *models.Transaction) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": txn.ID}, bson.M{
		"$set": bson.M{
			"status":      txn.Status,
			"note":        txn.Note,
			"archived":    txn.Archived,
			"processedAt": txn.ProcessedAt,
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

func (r *mongoTransactionRepository) find(ctx context.Context, filter bson.M) ([]models.Transaction, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	txns := []models.Transaction{}
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// FindByUser returns the member's current-cycle history, newest first.
func (r *mongoTransactionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	return r.find(ctx, bson.M{"userId": userID, "archived": false})
}

func (r *mongoTransactionRepository) FindPending(ctx context.Context) ([]models.Transaction, error) {
	return r.find(ctx, bson.M{"status": models.TransactionPending})
}

func (r *mongoTransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoTransactionRepository) FindCompletedByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Transaction, error) {
	if len(userIDs) == 0 {
		return []models.Transaction{}, nil
	}
	return r.find(ctx, bson.M{
		"userId": bson.M{"$in": userIDs},
		"status": models.TransactionCompleted,
	})
}

// ArchiveCompletedForUser closes out a cycle: every completed transaction of
// the member is flagged archived so the next cycle starts with a clean slate.
func (r *mongoTransactionRepository) ArchiveCompletedForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"userId": userID, "status": models.TransactionCompleted, "archived": false},
		bson.M{"$set": bson.M{"archived": true}},
	)
	return err
}
