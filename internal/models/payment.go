package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is one row per transaction keyed by owner + txn id.
type Payment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TxnID     string             `bson:"txnId" json:"txnId"`
	MemberID  primitive.ObjectID `bson:"memberId" json:"memberId"`
	Purpose   string             `bson:"purpose" json:"purpose"`
	Amount    float64            `bson:"amount" json:"amount"`
	Method    string             `bson:"method" json:"method"`
	Status    string             `bson:"status" json:"status"`
	PaidAt    time.Time          `bson:"paidAt" json:"paidAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
