package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedevelopmentForm is the member's submission for the redevelopment
// survey. Status moves pending -> reviewed/approved/rejected by an admin.
type RedevelopmentForm struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID         primitive.ObjectID `bson:"memberId" json:"memberId"`
	Name             string             `bson:"name" json:"name"`
	Phone            string             `bson:"phone" json:"phone"`
	Email            string             `bson:"email" json:"email"`
	UnitNumber       string             `bson:"unitNumber" json:"unitNumber"`
	VacateDate       *time.Time         `bson:"vacateDate,omitempty" json:"vacateDate,omitempty"`
	AlternateAddress string             `bson:"alternateAddress,omitempty" json:"alternateAddress,omitempty"`
	Status           string             `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FormComment is an append-only comment row attached to one form.
type FormComment struct {
	ID         string             `bson:"id" json:"id"`
	FormID     primitive.ObjectID `bson:"formId" json:"formId"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	AuthorRole string             `bson:"authorRole" json:"authorRole"`
	Text       string             `bson:"text" json:"text"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
