package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMemberIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("members").Indexes()

	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("email_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "unitNumber", Value: 1}},
			Options: options.Index().
				SetName("unitNumber_unique").
				SetUnique(true),
		},
	}

	log.Println("EnsureMemberIndexes: creating member indexes")
	_, err := indexes.CreateMany(ctx, models)
	if err != nil {
		log.Println("EnsureMemberIndexes: member index error:", err)
		return err
	}

	adminEmail := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}
	if _, err := db.Collection("admins").Indexes().CreateOne(ctx, adminEmail); err != nil {
		log.Println("EnsureMemberIndexes: admin index error:", err)
		return err
	}

	for _, child := range []string{"family_members", "vehicles"} {
		ownerIndex := mongo.IndexModel{
			Keys:    bson.D{{Key: "memberId", Value: 1}},
			Options: options.Index().SetName("memberId_index"),
		}
		if _, err := db.Collection(child).Indexes().CreateOne(ctx, ownerIndex); err != nil {
			log.Println("EnsureMemberIndexes:", child, "index error:", err)
			return err
		}
	}

	log.Println("EnsureMemberIndexes: member indexes created")
	return nil
}

func EnsureComplaintIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	complaintKey := mongo.IndexModel{
		Keys: bson.D{
			{Key: "memberId", Value: 1},
			{Key: "complaintId", Value: 1},
		},
		Options: options.Index().
			SetName("memberId_complaintId_unique").
			SetUnique(true),
	}

	log.Println("EnsureComplaintIndexes: creating complaint indexes")
	if _, err := db.Collection("complaints").Indexes().CreateOne(ctx, complaintKey); err != nil {
		log.Println("EnsureComplaintIndexes: complaint index error:", err)
		return err
	}

	messageIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "complaintId", Value: 1},
			{Key: "createdAt", Value: 1},
		},
		Options: options.Index().SetName("complaintId_createdAt_index"),
	}
	if _, err := db.Collection("complaint_messages").Indexes().CreateOne(ctx, messageIndex); err != nil {
		log.Println("EnsureComplaintIndexes: message index error:", err)
		return err
	}

	log.Println("EnsureComplaintIndexes: complaint indexes created")
	return nil
}

func EnsurePaymentIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	txnKey := mongo.IndexModel{
		Keys: bson.D{
			{Key: "memberId", Value: 1},
			{Key: "txnId", Value: 1},
		},
		Options: options.Index().
			SetName("memberId_txnId_unique").
			SetUnique(true),
	}

	log.Println("EnsurePaymentIndexes: creating payment indexes")
	if _, err := db.Collection("payments").Indexes().CreateOne(ctx, txnKey); err != nil {
		log.Println("EnsurePaymentIndexes: payment index error:", err)
		return err
	}
	log.Println("EnsurePaymentIndexes: payment indexes created")
	return nil
}

func EnsureTokenIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, coll := range []string{"refresh_tokens", "reset_tokens"} {
		hashIndex := mongo.IndexModel{
			Keys:    bson.D{{Key: "tokenHash", Value: 1}},
			Options: options.Index().SetName("tokenHash_index"),
		}
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, hashIndex); err != nil {
			log.Println("EnsureTokenIndexes:", coll, "index error:", err)
			return err
		}
	}

	return nil
}

func EnsureRedevelopmentIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	formCommentIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "formId", Value: 1},
			{Key: "createdAt", Value: 1},
		},
		Options: options.Index().SetName("formId_createdAt_index"),
	}

	log.Println("EnsureRedevelopmentIndexes: creating redevelopment indexes")
	if _, err := db.Collection("redevelopment_comments").Indexes().CreateOne(ctx, formCommentIndex); err != nil {
		log.Println("EnsureRedevelopmentIndexes: comment index error:", err)
		return err
	}
	log.Println("EnsureRedevelopmentIndexes: redevelopment indexes created")
	return nil
}
