package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member represents a society member account.
type Member struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone,omitempty" json:"phone,omitempty"`
	UnitNumber       string             `bson:"unitNumber" json:"unitNumber"`
	IsOwner          bool               `bson:"isOwner" json:"isOwner"`
	AlternateAddress string             `bson:"alternateAddress,omitempty" json:"alternateAddress,omitempty"`
	TenancyStart     *time.Time         `bson:"tenancyStart,omitempty" json:"tenancyStart,omitempty"`
	TenancyEnd       *time.Time         `bson:"tenancyEnd,omitempty" json:"tenancyEnd,omitempty"`
	PasswordHash     string             `bson:"passwordHash" json:"-"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FamilyMember is a child record owned by one member. The ID is a stable
// uuid assigned on first insert and preserved across profile edits.
type FamilyMember struct {
	ID       string             `bson:"id" json:"id"`
	MemberID primitive.ObjectID `bson:"memberId" json:"-"`
	Name     string             `bson:"name" json:"name"`
	Relation string             `bson:"relation" json:"relation"`
	Age      int                `bson:"age" json:"age"`
}

// Vehicle is a child record owned by one member.
type Vehicle struct {
	ID             string             `bson:"id" json:"id"`
	MemberID       primitive.ObjectID `bson:"memberId" json:"-"`
	Type           string             `bson:"type" json:"type"`
	PlateNumber    string             `bson:"plateNumber" json:"plateNumber"`
	Model          string             `bson:"model,omitempty" json:"model,omitempty"`
	IsCurrent      bool               `bson:"isCurrent" json:"isCurrent"`
	OwnedFrom      *time.Time         `bson:"ownedFrom,omitempty" json:"ownedFrom,omitempty"`
	OwnedUntil     *time.Time         `bson:"ownedUntil,omitempty" json:"ownedUntil,omitempty"`
	RegistrationNo string             `bson:"registrationNo,omitempty" json:"registrationNo,omitempty"`
}
