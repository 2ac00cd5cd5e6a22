package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application status values. An application starts out pending and is moved to
// approved or declined by an admissions admin. Admins may correct a decision,
// so approved and declined can transition to each other.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// ValidStatus reports whether s is one of the known application statuses
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusDeclined
}

// StudentApplication holds the structure for the applications collection in mongo
type StudentApplication struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName      string             `json:"firstName" bson:"firstName"`
	LastName       string             `json:"lastName" bson:"lastName"`
	Email          string             `json:"email" bson:"email"`
	Mobile         string             `json:"mobile" bson:"mobile"`
	DOB            string             `json:"dob" bson:"dob"`
	Gender         string             `json:"gender" bson:"gender"`
	Category       string             `json:"category" bson:"category"`
	CurrentAddress string             `json:"currentAddress" bson:"currentAddress"`
	AbcID          string             `json:"abcId" bson:"abcId"`
	Course         string             `json:"course" bson:"course"`
	ClassX         EducationRecord    `json:"classX" bson:"classX"`
	ClassXII       EducationRecord    `json:"classXII" bson:"classXII"`
	Status         string             `json:"status" bson:"status"`
	PhotoURL       string             `json:"photoUrl" bson:"photoUrl,omitempty"`
	FeePaid        bool               `json:"feePaid" bson:"feePaid"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// EducationRecord holds one prior qualification as entered on the registration form
type EducationRecord struct {
	Institute string `json:"institute" bson:"institute"`
	Board     string `json:"board" bson:"board"`
	Year      string `json:"year" bson:"year"`
	Aggregate string `json:"aggregate" bson:"aggregate"`
}

// ApplicationStats holds the aggregate counts shown on the admin dashboard and
// the public homepage ticker
type ApplicationStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Declined int64 `json:"declined"`
}
