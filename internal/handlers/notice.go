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

	"backend/internal/models"
)

type noticeRequest struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Category string `json:"category"`
}

func GetNotices(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = category
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("notices").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[NOTICE] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		notices := make([]models.Notice, 0)
		if err := cursor.All(ctx, &notices); err != nil {
			log.Println("[NOTICE] [ERROR] decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": notices})
	}
}

func CreateNotice(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req noticeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := time.Now()
		notice := models.Notice{
			Title:     strings.TrimSpace(req.Title),
			Body:      strings.TrimSpace(req.Body),
			Category:  strings.TrimSpace(req.Category),
			PostedBy:  nameFromContext(c, "adminName"),
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("notices").InsertOne(ctx, notice)
		if err != nil {
			log.Println("[NOTICE] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		notice.ID, _ = res.InsertedID.(primitive.ObjectID)
		log.Println("[NOTICE] [INFO] notice created:", notice.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"notice": notice})
	}
}

func UpdateNotice(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req noticeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		noticeID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notice id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("notices").UpdateByID(ctx, noticeID, bson.M{
			"$set": bson.M{
				"title":     strings.TrimSpace(req.Title),
				"body":      strings.TrimSpace(req.Body),
				"category":  strings.TrimSpace(req.Category),
				"updatedAt": time.Now(),
			},
		})
		if err != nil {
			log.Println("[NOTICE] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "notice not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "notice updated"})
	}
}

func DeleteNotice(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		noticeID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notice id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("notices").DeleteOne(ctx, bson.M{"_id": noticeID})
		if err != nil {
			log.Println("[NOTICE] [ERROR] delete failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "notice not found"})
			return
		}

		log.Println("[NOTICE] [INFO] notice deleted:", noticeID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "notice deleted"})
	}
}
