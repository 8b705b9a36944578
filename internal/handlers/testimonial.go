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

type testimonialRequest struct {
	Text   string `json:"text" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

// GetTestimonials lists approved testimonials only; pending ones are
// visible through the admin listing.
func GetTestimonials(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("testimonials").Find(ctx, bson.M{"approved": true}, opts)
		if err != nil {
			log.Println("[TESTIMONIAL] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		testimonials := make([]models.Testimonial, 0)
		if err := cursor.All(ctx, &testimonials); err != nil {
			log.Println("[TESTIMONIAL] [ERROR] decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": testimonials})
	}
}

func GetAllTestimonials(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if v := strings.TrimSpace(c.Query("approved")); v != "" {
			filter["approved"] = v == "true"
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("testimonials").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[TESTIMONIAL] [ERROR] admin list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		testimonials := make([]models.Testimonial, 0)
		if err := cursor.All(ctx, &testimonials); err != nil {
			log.Println("[TESTIMONIAL] [ERROR] decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": testimonials})
	}
}

func CreateTestimonial(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		var req testimonialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		testimonial := models.Testimonial{
			MemberID:   memberID,
			AuthorName: nameFromContext(c, "memberName"),
			Text:       strings.TrimSpace(req.Text),
			Rating:     req.Rating,
			Approved:   false,
			CreatedAt:  time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("testimonials").InsertOne(ctx, testimonial)
		if err != nil {
			log.Println("[TESTIMONIAL] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		testimonial.ID, _ = res.InsertedID.(primitive.ObjectID)
		log.Println("[TESTIMONIAL] [INFO] testimonial submitted:", testimonial.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"testimonial": testimonial})
	}
}

func ApproveTestimonial(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		testimonialID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid testimonial id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("testimonials").UpdateByID(ctx, testimonialID, bson.M{
			"$set": bson.M{"approved": true},
		})
		if err != nil {
			log.Println("[TESTIMONIAL] [ERROR] approve failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "testimonial not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "testimonial approved"})
	}
}

func DeleteTestimonial(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		testimonialID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid testimonial id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("testimonials").DeleteOne(ctx, bson.M{"_id": testimonialID})
		if err != nil {
			log.Println("[TESTIMONIAL] [ERROR] delete failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "testimonial not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "testimonial deleted"})
	}
}
