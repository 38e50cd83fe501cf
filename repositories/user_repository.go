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

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)
	FindByReferredBy(ctx context.Context, code string) ([]models.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error
	SetVerified(ctx context.Context, id primitive.ObjectID) error
	FindAll(ctx context.Context) ([]models.User, error)
	FindAdmins(ctx context.Context) ([]models.User, error)
	FindMembers(ctx context.Context) ([]models.User, error)
}

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Client) UserRepository {
	return &mongoUserRepository{collection: config.GetCollection(db, "users")}
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"referralCode": code})
}

func (r *mongoUserRepository) FindByReferredBy(ctx context.Context, code string) ([]models.User, error) {
	return r.find(ctx, bson.M{"referredBy": code})
}

func (r *mongoUserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"$or": []bson.M{{"email": email}, {"phone": phone}},
	})
	return count > 0, err
}

func (r *mongoUserRepository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"referralCode": code})
	return count > 0, err
}

func (r *mongoUserRepository) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// Update rewrites the mutable fields of the user document.
func (r *mongoUserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"fullName":         user.FullName,
			"phone":            user.Phone,
			"isVerified":       user.IsVerified,
			"bankDetails":      user.BankDetails,
			"balance":          user.Balance,
			"totalSaved":       user.TotalSaved,
			"monthsCompleted":  user.MonthsCompleted,
			"lastPaymentDate":  user.LastPaymentDate,
			"nextPaymentDate":  user.NextPaymentDate,
			"isPaymentOverdue": user.IsPaymentOverdue,
			"overdueAmount":    user.OverdueAmount,
			"cycleNumber":      user.CycleNumber,
			"updatedAt":        user.UpdatedAt,
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

func (r *mongoUserRepository) UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"fcmToken": token, "updatedAt": time.Now()},
	})
	return err
}

func (r *mongoUserRepository) SetVerified(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"isVerified": true, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoUserRepository) FindAdmins(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{"isAdmin": true})
}

func (r *mongoUserRepository) FindMembers(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{"isAdmin": false})
}
