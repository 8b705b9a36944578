package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notice struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	PostedBy  string             `bson:"postedBy" json:"postedBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Venue       string             `bson:"venue,omitempty" json:"venue,omitempty"`
	StartsAt    time.Time          `bson:"startsAt" json:"startsAt"`
	EndsAt      *time.Time         `bson:"endsAt,omitempty" json:"endsAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type Testimonial struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID   primitive.ObjectID `bson:"memberId" json:"memberId"`
	AuthorName string             `bson:"authorName" json:"authorName"`
	Text       string             `bson:"text" json:"text"`
	Rating     int                `bson:"rating" json:"rating"`
	Approved   bool               `bson:"approved" json:"approved"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type ServiceProvider struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Service   string             `bson:"service" json:"service"`
	Phone     string             `bson:"phone" json:"phone"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
