package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

type provisionMemberRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	UnitNumber string `json:"unitNumber" binding:"required"`
	IsOwner    bool   `json:"isOwner"`
	Password   string `json:"password" binding:"required,min=6"`
}

func ListMembers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if unit := strings.TrimSpace(c.Query("unitNumber")); unit != "" {
			filter["unitNumber"] = unit
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "unitNumber", Value: 1}})
		cursor, err := db.Collection("members").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[MEMBER] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		members := make([]models.Member, 0)
		if err := cursor.All(ctx, &members); err != nil {
			log.Println("[MEMBER] [ERROR] decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": members})
	}
}

// ProvisionMember creates a login-able member account. The unique
// indexes on email and unitNumber reject duplicates at the storage
// layer; the pre-count keeps the error message friendly.
func ProvisionMember(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req provisionMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		unit := strings.TrimSpace(req.UnitNumber)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("members").CountDocuments(ctx, bson.M{
			"$or": []bson.M{
				{"email": email},
				{"unitNumber": unit},
			},
		})
		if err != nil {
			log.Println("[MEMBER] [ERROR] provision lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "email or unit already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[MEMBER] [ERROR] password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "password hash failed"})
			return
		}

		now := time.Now()
		member := models.Member{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			Phone:        strings.TrimSpace(req.Phone),
			UnitNumber:   unit,
			IsOwner:      req.IsOwner,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("members").InsertOne(ctx, member)
		if err != nil {
			log.Println("[MEMBER] [ERROR] provision insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		member.ID, _ = res.InsertedID.(primitive.ObjectID)
		log.Println("[MEMBER] [INFO] member provisioned:", email, unit)
		c.JSON(http.StatusCreated, gin.H{"member": member})
	}
}
