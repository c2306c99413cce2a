package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category names are stored lowercased so the unique index doubles as a
// case-insensitive uniqueness check.
type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
