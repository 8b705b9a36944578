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

type eventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Venue       string `json:"venue"`
	StartsAt    string `json:"startsAt" binding:"required"`
	EndsAt      string `json:"endsAt"`
}

func GetEvents(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if strings.TrimSpace(c.Query("upcoming")) == "true" {
			filter["startsAt"] = bson.M{"$gte": time.Now()}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "startsAt", Value: 1}})
		cursor, err := db.Collection("events").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[EVENT] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		events := make([]models.Event, 0)
		if err := cursor.All(ctx, &events); err != nil {
			log.Println("[EVENT] [ERROR] decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": events})
	}
}

func CreateEvent(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		startsAt, err := parseDateString(req.StartsAt)
		if err != nil || startsAt == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startsAt date"})
			return
		}
		endsAt, err := parseDateString(req.EndsAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endsAt date"})
			return
		}

		event := models.Event{
			Title:       strings.TrimSpace(req.Title),
			Description: strings.TrimSpace(req.Description),
			Venue:       strings.TrimSpace(req.Venue),
			StartsAt:    *startsAt,
			EndsAt:      endsAt,
			CreatedAt:   time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("events").InsertOne(ctx, event)
		if err != nil {
			log.Println("[EVENT] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		event.ID, _ = res.InsertedID.(primitive.ObjectID)
		log.Println("[EVENT] [INFO] event created:", event.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"event": event})
	}
}

func UpdateEvent(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		eventID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		startsAt, err := parseDateString(req.StartsAt)
		if err != nil || startsAt == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startsAt date"})
			return
		}
		endsAt, err := parseDateString(req.EndsAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endsAt date"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("events").UpdateByID(ctx, eventID, bson.M{
			"$set": bson.M{
				"title":       strings.TrimSpace(req.Title),
				"description": strings.TrimSpace(req.Description),
				"venue":       strings.TrimSpace(req.Venue),
				"startsAt":    *startsAt,
				"endsAt":      endsAt,
			},
		})
		if err != nil {
			log.Println("[EVENT] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		log.Println("[EVENT] [INFO] event updated:", eventID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "event updated"})
	}
}

func DeleteEvent(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("events").DeleteOne(ctx, bson.M{"_id": eventID})
		if err != nil {
			log.Println("[EVENT] [ERROR] delete failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		log.Println("[EVENT] [INFO] event deleted:", eventID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
	}
}
