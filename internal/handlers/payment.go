package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type paymentRequest struct {
	MemberID string  `json:"memberId" binding:"required"`
	Purpose  string  `json:"purpose" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Method   string  `json:"method" binding:"required"`
	PaidAt   string  `json:"paidAt"`
}

func newTxnID(now time.Time) (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(buf[:]))), nil
}

func ListMyPayments(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		payments, err := loadPayments(ctx, db, bson.M{"memberId": memberID})
		if err != nil {
			log.Println("[PAYMENT] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": payments})
	}
}

// RecordPayment creates one payment row against a member, keyed by a
// generated transaction id.
func RecordPayment(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		memberID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.MemberID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid memberId"})
			return
		}

		paidAt, err := parseDateString(req.PaidAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid paidAt date"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.Collection("members").FindOne(ctx, bson.M{"_id": memberID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
				return
			}
			log.Println("[PAYMENT] [ERROR] member lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		now := time.Now()
		txnID, err := newTxnID(now)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] txn id generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "id generation failed"})
			return
		}

		when := now
		if paidAt != nil {
			when = *paidAt
		}

		payment := models.Payment{
			TxnID:     txnID,
			MemberID:  memberID,
			Purpose:   strings.TrimSpace(req.Purpose),
			Amount:    req.Amount,
			Method:    strings.TrimSpace(req.Method),
			Status:    "completed",
			PaidAt:    when,
			CreatedAt: now,
		}

		if _, err := db.Collection("payments").InsertOne(ctx, payment); err != nil {
			log.Println("[PAYMENT] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Println("[PAYMENT] [INFO] payment recorded:", txnID)
		c.JSON(http.StatusCreated, gin.H{"payment": payment})
	}
}

func ListAllPayments(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if memberHex := strings.TrimSpace(c.Query("memberId")); memberHex != "" {
			memberID, err := primitive.ObjectIDFromHex(memberHex)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid memberId"})
				return
			}
			filter["memberId"] = memberID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		payments, err := loadPayments(ctx, db, filter)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] admin list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": payments})
	}
}

func loadPayments(ctx context.Context, db *mongo.Database, filter bson.M) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})
	cursor, err := db.Collection("payments").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	payments := make([]models.Payment, 0)
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}
