package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Tag struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Name      string             `json:"name" bson:"name"`
	CreatedAt primitive.DateTime `json:"created_at" bson:"created_at"`
}

type TagUpdate struct {
	Name *string `json:"name,omitempty"`
}
