package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AOladipo/thriftcircle_backend/config"
	"github.com/AOladipo/thriftcircle_backend/models"
)

type ConfigRepository interface {
	Get(ctx context.Context) (*models.Config, error)
	Update(ctx context.Context, cfg *models.Config) error
}

type mongoConfigRepository struct {
	collection *mongo.Collection
}

func NewConfigRepository(db *mongo.Client) ConfigRepository {
	return &mongoConfigRepository{collection: config.GetCollection(db, "config")}
}

// Get returns the single settings document, seeding the defaults the first
// time the collection is read.
func (r *mongoConfigRepository) Get(ctx context.Context) (*models.Config, error) {
	var cfg models.Config
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&cfg)
	if err == mongo.ErrNoDocuments {
		seeded := models.DefaultConfig()
		if _, insertErr := r.collection.InsertOne(ctx, seeded); insertErr != nil {
			return nil, insertErr
		}
		return seeded, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *mongoConfigRepository) Update(ctx context.Context, cfg *models.Config) error {
	cfg.UpdatedAt = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{}, bson.M{"$set": cfg}, options.Update().SetUpsert(true))
	return err
}
