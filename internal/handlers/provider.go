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

type providerRequest struct {
	Name    string `json:"name" binding:"required"`
	Service string `json:"service" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

func GetServiceProviders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if service := strings.TrimSpace(c.Query("service")); service != "" {
			filter["service"] = service
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := db.Collection("service_providers").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[PROVIDER] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		providers := make([]models.ServiceProvider, 0)
		if err := cursor.All(ctx, &providers); err != nil {
			log.Println("[PROVIDER] [ERROR] decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": providers})
	}
}

func CreateServiceProvider(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req providerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		provider := models.ServiceProvider{
			Name:      strings.TrimSpace(req.Name),
			Service:   strings.TrimSpace(req.Service),
			Phone:     strings.TrimSpace(req.Phone),
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("service_providers").InsertOne(ctx, provider)
		if err != nil {
			log.Println("[PROVIDER] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		provider.ID, _ = res.InsertedID.(primitive.ObjectID)
		log.Println("[PROVIDER] [INFO] provider created:", provider.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"provider": provider})
	}
}

func UpdateServiceProvider(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req providerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		providerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("service_providers").UpdateByID(ctx, providerID, bson.M{
			"$set": bson.M{
				"name":    strings.TrimSpace(req.Name),
				"service": strings.TrimSpace(req.Service),
				"phone":   strings.TrimSpace(req.Phone),
			},
		})
		if err != nil {
			log.Println("[PROVIDER] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "provider updated"})
	}
}

func DeleteServiceProvider(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("service_providers").DeleteOne(ctx, bson.M{"_id": providerID})
		if err != nil {
			log.Println("[PROVIDER] [ERROR] delete failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "provider deleted"})
	}
}
