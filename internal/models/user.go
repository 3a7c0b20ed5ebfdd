package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	Password   string             `json:"-" bson:"password,omitempty"`
	Provider   string             `json:"provider" bson:"provider"` // local, google, facebook
	ProviderID string             `json:"-" bson:"providerId,omitempty"`
	Role       string             `json:"role" bson:"role"` // customer, admin
	Avatar     string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	IsActive   bool               `json:"isActive" bson:"isActive"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}
