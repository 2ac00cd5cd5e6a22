package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginOtp holds the structure for the loginOtps collection in mongo.
// There is at most one live code per email; verifying a code consumes it.
type LoginOtp struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Code      string             `json:"code" bson:"code"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expiresAt"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
