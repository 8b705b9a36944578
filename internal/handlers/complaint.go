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

type complaintRequest struct {
	Type        string `json:"type" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type complaintStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open in-progress resolved closed"`
}

type chatMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type complaintView struct {
	models.Complaint
	UnreadCount int `json:"unreadCount"`
}

// newComplaintID builds the human-readable complaint key, e.g.
// CMP-20260828-3F7A2C.
func newComplaintID(now time.Time) (string, error) {
	var buf [3]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("CMP-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(buf[:]))), nil
}

// newChatMessage stamps the complaint owner onto the message and seeds
// readBy with the sender.
func newChatMessage(complaint *models.Complaint, senderID primitive.ObjectID, role, text string, now time.Time) models.ChatMessage {
	return models.ChatMessage{
		ComplaintID: complaint.ComplaintID,
		OwnerID:     complaint.MemberID,
		SenderID:    senderID,
		SenderRole:  role,
		Text:        strings.TrimSpace(text),
		ReadBy:      []string{senderID.Hex()},
		CreatedAt:   now,
	}
}

// countUnread counts admin-authored messages the viewer has not seen.
func countUnread(messages []models.ChatMessage, viewerHex string) int {
	count := 0
	for _, message := range messages {
		if message.SenderRole != "admin" {
			continue
		}
		seen := false
		for _, reader := range message.ReadBy {
			if reader == viewerHex {
				seen = true
				break
			}
		}
		if !seen {
			count++
		}
	}
	return count
}

func CreateComplaint(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		var req complaintRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := time.Now()
		complaintID, err := newComplaintID(now)
		if err != nil {
			log.Println("[COMPLAINT] [ERROR] id generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "id generation failed"})
			return
		}

		complaint := models.Complaint{
			ComplaintID: complaintID,
			MemberID:    memberID,
			Type:        strings.TrimSpace(req.Type),
			Title:       strings.TrimSpace(req.Title),
			Description: strings.TrimSpace(req.Description),
			Status:      "open",
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("complaints").InsertOne(ctx, complaint); err != nil {
			log.Println("[COMPLAINT] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Println("[COMPLAINT] [INFO] complaint created:", complaintID)
		c.JSON(http.StatusCreated, gin.H{"complaint": complaint})
	}
}

func ListMyComplaints(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		complaints, err := loadComplaints(ctx, db, bson.M{"memberId": memberID})
		if err != nil {
			log.Println("[COMPLAINT] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		unread, err := unreadCountsByComplaint(ctx, db, complaintIDs(complaints), memberID.Hex())
		if err != nil {
			log.Println("[COMPLAINT] [ERROR] unread aggregation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		views := make([]complaintView, 0, len(complaints))
		for _, complaint := range complaints {
			views = append(views, complaintView{
				Complaint:   complaint,
				UnreadCount: unread[complaint.ComplaintID],
			})
		}

		c.JSON(http.StatusOK, gin.H{"data": views})
	}
}

func ListAllComplaints(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}
		if kind := strings.TrimSpace(c.Query("type")); kind != "" {
			filter["type"] = kind
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		complaints, err := loadComplaints(ctx, db, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "COMPLAINT", "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": complaints})
	}
}

func UpdateComplaintStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req complaintStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		complaintID := strings.TrimSpace(c.Param("id"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("complaints").UpdateOne(ctx,
			bson.M{"complaintId": complaintID},
			bson.M{"$set": bson.M{
				"status":    req.Status,
				"updatedAt": time.Now(),
			}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "COMPLAINT", "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, "COMPLAINT", "complaint not found")
			return
		}

		log.Println("[COMPLAINT] [INFO] status changed:", complaintID, req.Status)
		c.JSON(http.StatusOK, gin.H{"message": "status updated"})
	}
}

// SendComplaintMessage appends a chat message as either role. The sender
// is listed in its own readBy from the start, so a message never counts
// as unread for its author.
func SendComplaintMessage(db *mongo.Database, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		senderID, ok := actorIDFromContext(c, role)
		if !ok {
			return
		}

		var req chatMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		complaintID := strings.TrimSpace(c.Param("id"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		complaint, err := findComplaintForActor(ctx, db, complaintID, senderID, role)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
				return
			}
			log.Println("[CHAT] [ERROR] complaint lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		message := newChatMessage(complaint, senderID, role, req.Text, time.Now())

		res, err := db.Collection("complaint_messages").InsertOne(ctx, message)
		if err != nil {
			log.Println("[CHAT] [ERROR] message insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		message.ID, _ = res.InsertedID.(primitive.ObjectID)
		log.Println("[CHAT] [INFO] message sent:", complaintID, role)
		c.JSON(http.StatusCreated, gin.H{"message": message})
	}
}

func ListComplaintMessages(db *mongo.Database, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := actorIDFromContext(c, role)
		if !ok {
			return
		}

		complaintID := strings.TrimSpace(c.Param("id"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := findComplaintForActor(ctx, db, complaintID, actorID, role); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
				return
			}
			log.Println("[CHAT] [ERROR] complaint lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		cursor, err := db.Collection("complaint_messages").Find(ctx, bson.M{"complaintId": complaintID}, opts)
		if err != nil {
			log.Println("[CHAT] [ERROR] list messages failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		messages := make([]models.ChatMessage, 0)
		if err := cursor.All(ctx, &messages); err != nil {
			log.Println("[CHAT] [ERROR] decode messages failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":        messages,
			"unreadCount": countUnread(messages, actorID.Hex()),
		})
	}
}

// MarkComplaintRead adds the viewer to the readBy list of every
// admin-authored message they have not seen. Other viewers' read state
// is untouched.
func MarkComplaintRead(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		complaintID := strings.TrimSpace(c.Param("id"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := findComplaintForActor(ctx, db, complaintID, memberID, "member"); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
				return
			}
			log.Println("[CHAT] [ERROR] complaint lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		viewerHex := memberID.Hex()
		res, err := db.Collection("complaint_messages").UpdateMany(ctx,
			bson.M{
				"complaintId": complaintID,
				"senderRole":  "admin",
				"readBy":      bson.M{"$ne": viewerHex},
			},
			bson.M{"$addToSet": bson.M{"readBy": viewerHex}})
		if err != nil {
			log.Println("[CHAT] [ERROR] mark read failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Println("[CHAT] [INFO] marked read:", complaintID, res.ModifiedCount)
		c.JSON(http.StatusOK, gin.H{"markedRead": res.ModifiedCount})
	}
}

// StreamUnreadCounts replaces the per-complaint live subscriptions of
// the old portal with a single change stream covering all of the
// member's complaints, pushed to the client as server-sent events. The
// stream matches on the owner stamped into each message, so complaints
// created after the stream opened are covered too; each message change
// re-resolves the member's complaint set and re-emits the full
// per-complaint unread map.
func StreamUnreadCounts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		viewerHex := memberID.Hex()

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{
				"fullDocument.ownerId": memberID,
			}}},
		}
		opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
		stream, err := db.Collection("complaint_messages").Watch(ctx, pipeline, opts)
		if err != nil {
			log.Println("[CHAT] [ERROR] change stream open failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer stream.Close(context.Background())

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		emit := func() bool {
			complaints, err := loadComplaints(ctx, db, bson.M{"memberId": memberID})
			if err != nil {
				log.Println("[CHAT] [ERROR] stream complaint load failed:", err)
				return false
			}
			counts, err := unreadCountsByComplaint(ctx, db, complaintIDs(complaints), viewerHex)
			if err != nil {
				log.Println("[CHAT] [ERROR] stream unread aggregation failed:", err)
				return false
			}
			c.SSEvent("unread", counts)
			c.Writer.Flush()
			return true
		}

		if !emit() {
			return
		}

		for stream.Next(ctx) {
			if !emit() {
				return
			}
		}
	}
}

// unreadCountsByComplaint aggregates unseen admin messages into a map of
// complaintId -> count. Complaints with nothing unread are absent.
func unreadCountsByComplaint(ctx context.Context, db *mongo.Database, complaintIDs []string, viewerHex string) (map[string]int, error) {
	counts := make(map[string]int, len(complaintIDs))
	if len(complaintIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"complaintId": bson.M{"$in": complaintIDs},
			"senderRole":  "admin",
			"readBy":      bson.M{"$ne": viewerHex},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$complaintId",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := db.Collection("complaint_messages").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ComplaintID string `bson:"_id"`
		Count       int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ComplaintID] = row.Count
	}
	return counts, nil
}

func loadComplaints(ctx context.Context, db *mongo.Database, filter bson.M) ([]models.Complaint, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.Collection("complaints").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	complaints := make([]models.Complaint, 0)
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

func complaintIDs(complaints []models.Complaint) []string {
	ids := make([]string, 0, len(complaints))
	for _, complaint := range complaints {
		ids = append(ids, complaint.ComplaintID)
	}
	return ids
}

// findComplaintForActor scopes member lookups to their own complaints;
// admins can reach any complaint.
func findComplaintForActor(ctx context.Context, db *mongo.Database, complaintID string, actorID primitive.ObjectID, role string) (*models.Complaint, error) {
	filter := bson.M{"complaintId": complaintID}
	if role == "member" {
		filter["memberId"] = actorID
	}

	var complaint models.Complaint
	if err := db.Collection("complaints").FindOne(ctx, filter).Decode(&complaint); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func actorIDFromContext(c *gin.Context, role string) (primitive.ObjectID, bool) {
	if role == "member" {
		return memberIDFromContext(c)
	}

	value, ok := c.Get("adminId")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return primitive.NilObjectID, false
	}
	adminID, ok := value.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return primitive.NilObjectID, false
	}
	return adminID, true
}
