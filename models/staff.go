package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StaffApplication holds the structure for the staffApplications collection in mongo
type StaffApplication struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName  string             `json:"firstName" bson:"firstName"`
	LastName   string             `json:"lastName" bson:"lastName"`
	Email      string             `json:"email" bson:"email"`
	Mobile     string             `json:"mobile" bson:"mobile"`
	Role       string             `json:"role" bson:"role"`
	Experience string             `json:"experience" bson:"experience"`
	Status     string             `json:"status" bson:"status"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}
