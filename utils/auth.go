// utils/auth.go
package utils

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AOladipo/thriftcircle_backend/models"
)

// GetUserIDFromToken returns the authenticated user's id. The JWT middleware
// stores it in the context on every request it lets through.
func GetUserIDFromToken(c echo.Context) (primitive.ObjectID, error) {
	userID, ok := c.Get("userId").(string)
	if !ok || userID == "" {
		return primitive.NilObjectID, errors.New("no token found")
	}
	return primitive.ObjectIDFromHex(userID)
}

// GetUserFromToken loads the full user document for the authenticated request
func GetUserFromToken(c echo.Context, db *mongo.Client) (*models.User, error) {
	userID, err := GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "thriftcircle"
	}

	var user models.User
	err = db.Database(dbName).Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("user not found")
		}
		return nil, errors.New("error retrieving user")
	}

	return &user, nil
}
