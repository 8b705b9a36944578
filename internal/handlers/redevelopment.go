package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type redevelopmentRequest struct {
	Name             string `json:"name" binding:"required"`
	Phone            string `json:"phone" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	UnitNumber       string `json:"unitNumber"`
	VacateDate       string `json:"vacateDate"`
	AlternateAddress string `json:"alternateAddress"`
	Comment          string `json:"comment"`
}

type redevelopmentEditRequest struct {
	VacateDate       string `json:"vacateDate"`
	AlternateAddress string `json:"alternateAddress"`
}

type formCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type formStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending reviewed approved rejected"`
}

func buildRedevelopmentForm(memberID primitive.ObjectID, req redevelopmentRequest, vacateDate *time.Time, now time.Time) models.RedevelopmentForm {
	return models.RedevelopmentForm{
		MemberID:         memberID,
		Name:             strings.TrimSpace(req.Name),
		Phone:            strings.TrimSpace(req.Phone),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		UnitNumber:       strings.TrimSpace(req.UnitNumber),
		VacateDate:       vacateDate,
		AlternateAddress: strings.TrimSpace(req.AlternateAddress),
		Status:           "pending",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// initialFormComment returns nil when the submitted comment is blank, so
// a form without one never produces an empty comment row.
func initialFormComment(formID, memberID primitive.ObjectID, text string, now time.Time) *models.FormComment {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return &models.FormComment{
		ID:         uuid.NewString(),
		FormID:     formID,
		AuthorID:   memberID,
		AuthorRole: "member",
		Text:       trimmed,
		CreatedAt:  now,
	}
}

// SubmitRedevelopmentForm creates the form and, when an initial comment
// was supplied, exactly one comment row alongside it.
func SubmitRedevelopmentForm(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		var req redevelopmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		vacateDate, err := parseDateString(req.VacateDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vacateDate"})
			return
		}

		now := time.Now()
		form := buildRedevelopmentForm(memberID, req, vacateDate, now)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("redevelopment_forms").InsertOne(ctx, form)
		if err != nil {
			log.Println("[REDEV] [ERROR] form insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		form.ID, _ = res.InsertedID.(primitive.ObjectID)

		comment := initialFormComment(form.ID, memberID, req.Comment, now)
		if comment != nil {
			if _, err := db.Collection("redevelopment_comments").InsertOne(ctx, comment); err != nil {
				log.Println("[REDEV] [ERROR] initial comment insert failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
				return
			}
		}

		log.Println("[REDEV] [INFO] form submitted:", form.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"form":    form,
			"comment": comment,
		})
	}
}

func GetMyRedevelopmentForm(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var form models.RedevelopmentForm
		err := db.Collection("redevelopment_forms").FindOne(ctx, bson.M{"memberId": memberID}).Decode(&form)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		if err != nil {
			log.Println("[REDEV] [ERROR] form lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		comments, err := loadFormComments(ctx, db, form.ID)
		if err != nil {
			log.Println("[REDEV] [ERROR] comment list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"form":     form,
			"comments": comments,
		})
	}
}

// UpdateRedevelopmentForm lets the owner adjust the vacate date and
// alternate address after submission. Ownership is part of the update
// filter, so a non-owner's call matches nothing.
func UpdateRedevelopmentForm(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		var req redevelopmentEditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		formID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
			return
		}

		vacateDate, err := parseDateString(req.VacateDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vacateDate"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("redevelopment_forms").UpdateOne(ctx,
			bson.M{"_id": formID, "memberId": memberID},
			bson.M{"$set": bson.M{
				"vacateDate":       vacateDate,
				"alternateAddress": strings.TrimSpace(req.AlternateAddress),
				"updatedAt":        time.Now(),
			}})
		if err != nil {
			log.Println("[REDEV] [ERROR] form update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}

		log.Println("[REDEV] [INFO] form updated:", formID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "form updated"})
	}
}

// CommentRedevelopmentForm appends to the form's comment list. Comments
// are append-only; there is no edit or delete.
func CommentRedevelopmentForm(db *mongo.Database, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorID, ok := actorIDFromContext(c, role)
		if !ok {
			return
		}

		var req formCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		formID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"_id": formID}
		if role == "member" {
			filter["memberId"] = authorID
		}
		if err := db.Collection("redevelopment_forms").FindOne(ctx, filter).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
				return
			}
			log.Println("[REDEV] [ERROR] form lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		comment := models.FormComment{
			ID:         uuid.NewString(),
			FormID:     formID,
			AuthorID:   authorID,
			AuthorRole: role,
			Text:       strings.TrimSpace(req.Text),
			CreatedAt:  time.Now(),
		}

		if _, err := db.Collection("redevelopment_comments").InsertOne(ctx, comment); err != nil {
			log.Println("[REDEV] [ERROR] comment insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"comment": comment})
	}
}

func ListRedevelopmentForms(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("redevelopment_forms").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[REDEV] [ERROR] admin list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		forms := make([]models.RedevelopmentForm, 0)
		if err := cursor.All(ctx, &forms); err != nil {
			log.Println("[REDEV] [ERROR] decode forms failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": forms})
	}
}

func GetRedevelopmentForm(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		formID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var form models.RedevelopmentForm
		if err := db.Collection("redevelopment_forms").FindOne(ctx, bson.M{"_id": formID}).Decode(&form); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
				return
			}
			log.Println("[REDEV] [ERROR] form lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		comments, err := loadFormComments(ctx, db, form.ID)
		if err != nil {
			log.Println("[REDEV] [ERROR] comment list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"form":     form,
			"comments": comments,
		})
	}
}

func UpdateRedevelopmentStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req formStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		formID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("redevelopment_forms").UpdateByID(ctx, formID, bson.M{
			"$set": bson.M{
				"status":    req.Status,
				"updatedAt": time.Now(),
			},
		})
		if err != nil {
			log.Println("[REDEV] [ERROR] status update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}

		log.Println("[REDEV] [INFO] status changed:", formID.Hex(), req.Status)
		c.JSON(http.StatusOK, gin.H{"message": "status updated"})
	}
}

func loadFormComments(ctx context.Context, db *mongo.Database, formID primitive.ObjectID) ([]models.FormComment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := db.Collection("redevelopment_comments").Find(ctx, bson.M{"formId": formID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := make([]models.FormComment, 0)
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
