package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Complaint is one row per complaint keyed by owner + human-readable id.
type Complaint struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ComplaintID string             `bson:"complaintId" json:"complaintId"`
	MemberID    primitive.ObjectID `bson:"memberId" json:"memberId"`
	Type        string             `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ChatMessage belongs to one complaint's thread. OwnerID denormalizes the
// complaint owner so live streams can match on it without a lookup. ReadBy
// lists the hex ids of accounts that have seen the message; the sender is
// present from the start so its own messages never count as unread.
type ChatMessage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ComplaintID string             `bson:"complaintId" json:"complaintId"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	SenderID    primitive.ObjectID `bson:"senderId" json:"senderId"`
	SenderRole  string             `bson:"senderRole" json:"senderRole"`
	Text        string             `bson:"text" json:"text"`
	ReadBy      []string           `bson:"readBy" json:"readBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
