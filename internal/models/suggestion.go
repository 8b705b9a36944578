package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestionComment is an embedded comment. Ordering is insertion order.
type SuggestionComment struct {
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	AuthorName string             `bson:"authorName" json:"authorName"`
	Text       string             `bson:"text" json:"text"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Suggestion carries its vote tally inline. Voters holds one token per
// active vote, formatted "<memberHex>_upvote" or "<memberHex>_downvote",
// so a member holds at most one active vote per suggestion.
type Suggestion struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	MemberID    primitive.ObjectID  `bson:"memberId" json:"memberId"`
	AuthorName  string              `bson:"authorName" json:"authorName"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Category    string              `bson:"category" json:"category"`
	Priority    string              `bson:"priority" json:"priority"`
	Status      string              `bson:"status" json:"status"`
	Upvotes     int                 `bson:"upvotes" json:"upvotes"`
	Downvotes   int                 `bson:"downvotes" json:"downvotes"`
	Voters      []string            `bson:"voters" json:"-"`
	Comments    []SuggestionComment `bson:"comments" json:"comments"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
