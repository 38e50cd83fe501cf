package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification model. A zero UserID marks a broadcast row visible to everyone.
type Notification struct {
	ID        primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID     `json:"userId" bson:"userId"`
	Title     string                 `json:"title" bson:"title"`
	Message   string                 `json:"message" bson:"message"`
	Type      string                 `json:"type" bson:"type"` // e.g. "payment_approved"
	Data      map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	IsRead    bool                   `json:"isRead" bson:"isRead"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
}
