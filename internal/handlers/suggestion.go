package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type suggestionRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

type voteRequest struct {
	Direction string `json:"direction" binding:"required,oneof=upvote downvote"`
}

type suggestionCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type suggestionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected implemented under-review"`
}

type suggestionView struct {
	models.Suggestion
	MyVote string `json:"myVote,omitempty"`
}

const (
	voteCancel = iota
	voteSwitch
	voteFresh
)

func upvoteToken(memberHex string) string   { return memberHex + "_upvote" }
func downvoteToken(memberHex string) string { return memberHex + "_downvote" }

// voteDirection reports which vote, if any, the member currently holds
// on a voter-token set.
func voteDirection(voters []string, memberHex string) string {
	for _, token := range voters {
		switch token {
		case upvoteToken(memberHex):
			return "upvote"
		case downvoteToken(memberHex):
			return "downvote"
		}
	}
	return ""
}

// voteDecision classifies a vote action against the current token set.
// Casting the held direction cancels it; casting the other direction
// swaps it; otherwise it is a fresh vote.
func voteDecision(voters []string, memberHex, direction string) int {
	switch voteDirection(voters, memberHex) {
	case direction:
		return voteCancel
	case "":
		return voteFresh
	default:
		return voteSwitch
	}
}

func ListSuggestions(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("suggestions").Find(ctx, bson.M{}, opts)
		if err != nil {
			log.Println("[SUGGESTION] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		suggestions := make([]models.Suggestion, 0)
		if err := cursor.All(ctx, &suggestions); err != nil {
			log.Println("[SUGGESTION] [ERROR] decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		viewerHex := viewerHexFromContext(c)
		views := make([]suggestionView, 0, len(suggestions))
		for _, suggestion := range suggestions {
			views = append(views, suggestionView{
				Suggestion: suggestion,
				MyVote:     voteDirection(suggestion.Voters, viewerHex),
			})
		}

		c.JSON(http.StatusOK, gin.H{"data": views})
	}
}

func CreateSuggestion(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		var req suggestionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		priority := strings.TrimSpace(req.Priority)
		if priority == "" {
			priority = "medium"
		}

		now := time.Now()
		suggestion := models.Suggestion{
			MemberID:    memberID,
			AuthorName:  nameFromContext(c, "memberName"),
			Title:       strings.TrimSpace(req.Title),
			Description: strings.TrimSpace(req.Description),
			Category:    strings.TrimSpace(req.Category),
			Priority:    priority,
			Status:      "pending",
			Upvotes:     0,
			Downvotes:   0,
			Voters:      []string{},
			Comments:    []models.SuggestionComment{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("suggestions").InsertOne(ctx, suggestion)
		if err != nil {
			log.Println("[SUGGESTION] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		suggestion.ID, _ = res.InsertedID.(primitive.ObjectID)
		log.Println("[SUGGESTION] [INFO] suggestion created:", suggestion.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"suggestion": suggestion})
	}
}

// VoteSuggestion applies a toggle vote. The write re-asserts in its
// filter the token membership the decision was based on, so two
// concurrent votes on the same suggestion cannot double-count; a lost
// race matches nothing and reports a conflict instead.
func VoteSuggestion(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		var req voteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		suggestionID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var suggestion models.Suggestion
		if err := db.Collection("suggestions").FindOne(ctx, bson.M{"_id": suggestionID}).Decode(&suggestion); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
				return
			}
			log.Println("[SUGGESTION] [ERROR] vote lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		memberHex := memberID.Hex()
		filter, update := buildVoteUpdate(suggestionID, suggestion.Voters, memberHex, req.Direction)

		res, err := db.Collection("suggestions").UpdateOne(ctx, filter, update)
		if err != nil {
			log.Println("[SUGGESTION] [ERROR] vote update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			// Another session changed this member's vote between read and
			// write; the guard filter refused the stale mutation.
			c.JSON(http.StatusConflict, gin.H{"error": "vote conflict, retry"})
			return
		}

		var updated models.Suggestion
		if err := db.Collection("suggestions").FindOne(ctx, bson.M{"_id": suggestionID}).Decode(&updated); err != nil {
			log.Println("[SUGGESTION] [ERROR] vote reload failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Println("[SUGGESTION] [INFO] vote applied:", suggestionID.Hex(), req.Direction)
		c.JSON(http.StatusOK, gin.H{"suggestion": suggestionView{
			Suggestion: updated,
			MyVote:     voteDirection(updated.Voters, memberHex),
		}})
	}
}

// buildVoteUpdate returns a guarded single-document mutation for the
// decided vote case. The filter encodes the expected membership of the
// member's tokens; the update adjusts counters and tokens together.
func buildVoteUpdate(suggestionID primitive.ObjectID, voters []string, memberHex, direction string) (bson.M, bson.M) {
	ownToken := upvoteToken(memberHex)
	otherToken := downvoteToken(memberHex)
	counter, otherCounter := "upvotes", "downvotes"
	if direction == "downvote" {
		ownToken, otherToken = otherToken, ownToken
		counter, otherCounter = otherCounter, counter
	}

	now := time.Now()
	switch voteDecision(voters, memberHex, direction) {
	case voteCancel:
		return bson.M{"_id": suggestionID, "voters": ownToken},
			bson.M{
				"$inc":  bson.M{counter: -1},
				"$pull": bson.M{"voters": ownToken},
				"$set":  bson.M{"updatedAt": now},
			}
	case voteSwitch:
		// $pull and $addToSet cannot target the same array in one update;
		// the positional $ rewrites the matched token slot instead.
		return bson.M{"_id": suggestionID, "voters": otherToken},
			bson.M{
				"$inc": bson.M{counter: 1, otherCounter: -1},
				"$set": bson.M{"voters.$": ownToken, "updatedAt": now},
			}
	default:
		return bson.M{
				"_id":    suggestionID,
				"voters": bson.M{"$nin": []string{ownToken, otherToken}},
			},
			bson.M{
				"$inc":      bson.M{counter: 1},
				"$addToSet": bson.M{"voters": ownToken},
				"$set":      bson.M{"updatedAt": now},
			}
	}
}

func CommentSuggestion(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		var req suggestionCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		suggestionID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
			return
		}

		comment := models.SuggestionComment{
			AuthorID:   memberID,
			AuthorName: nameFromContext(c, "memberName"),
			Text:       strings.TrimSpace(req.Text),
			CreatedAt:  time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("suggestions").UpdateByID(ctx, suggestionID, bson.M{
			"$push": bson.M{"comments": comment},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[SUGGESTION] [ERROR] comment append failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"comment": comment})
	}
}

func UpdateSuggestionStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req suggestionStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		suggestionID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("suggestions").UpdateByID(ctx, suggestionID, bson.M{
			"$set": bson.M{
				"status":    req.Status,
				"updatedAt": time.Now(),
			},
		})
		if err != nil {
			log.Println("[SUGGESTION] [ERROR] status update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
			return
		}

		log.Println("[SUGGESTION] [INFO] status changed:", suggestionID.Hex(), req.Status)
		c.JSON(http.StatusOK, gin.H{"message": "status updated"})
	}
}

// viewerHexFromContext pulls the acting account id out of whichever
// guard ran, so list views can mark the viewer's own vote.
func viewerHexFromContext(c *gin.Context) string {
	if value, ok := c.Get("memberId"); ok {
		if memberID, ok := value.(primitive.ObjectID); ok {
			return memberID.Hex()
		}
	}
	if value, ok := c.Get("claims"); ok {
		if claims, ok := value.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				return sub
			}
		}
	}
	return ""
}

func nameFromContext(c *gin.Context, key string) string {
	if value, ok := c.Get(key); ok {
		if name, ok := value.(string); ok {
			return name
		}
	}
	return ""
}
