package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type loginAccount struct {
	ID    primitive.ObjectID
	Name  string
	Email string
	Hash  string
	Role  string
}

// identityFilter matches a login identifier against either the account's
// email or its unit number. Email comparison is case-insensitive by
// lowercasing the input; unit numbers are stored as entered.
func identityFilter(identifier string) bson.M {
	trimmed := strings.TrimSpace(identifier)
	return bson.M{
		"$or": []bson.M{
			{"email": strings.ToLower(trimmed)},
			{"unitNumber": trimmed},
		},
	}
}

// resolveAccount looks the identifier up in admins first, then members.
// The returned account carries the stored email, which is the identity
// all credential checks and issued tokens use; the raw identifier is
// never used past this point.
func resolveAccount(ctx context.Context, db *mongo.Database, identifier string) (*loginAccount, error) {
	filter := identityFilter(identifier)

	var admin models.Admin
	err := db.Collection("admins").FindOne(ctx, filter).Decode(&admin)
	if err == nil {
		return &loginAccount{
			ID:    admin.ID,
			Name:  admin.Name,
			Email: admin.Email,
			Hash:  admin.PasswordHash,
			Role:  "admin",
		}, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	var member models.Member
	err = db.Collection("members").FindOne(ctx, filter).Decode(&member)
	if err == nil {
		return &loginAccount{
			ID:    member.ID,
			Name:  member.Name,
			Email: member.Email,
			Hash:  member.PasswordHash,
			Role:  "member",
		}, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	return nil, mongo.ErrNoDocuments
}

func Login(db *mongo.Database, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		identifier := strings.TrimSpace(req.Identifier)
		if identifier == "" || strings.TrimSpace(req.Password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifier and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		account, err := resolveAccount(ctx, db, identifier)
		if err == mongo.ErrNoDocuments {
			log.Println("[AUTH] [ERROR] login no account for identifier:", identifier)
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] login lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.Hash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials for:", account.Email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if account.Role == "admin" {
			accessToken, err := issueAccessToken(account, jwtSecret, accessTTL)
			if err != nil {
				log.Println("[AUTH] [ERROR] admin token generation failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
				return
			}

			log.Println("[AUTH] [INFO] admin login succeeded:", account.Email)
			c.JSON(http.StatusOK, gin.H{
				"accessToken": accessToken,
				"dashboard":   "admin",
				"user": gin.H{
					"id":    account.ID.Hex(),
					"name":  account.Name,
					"email": account.Email,
				},
			})
			return
		}

		tokens, err := issueMemberTokens(c, db, account, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] member login token generation failed:", err)
			return
		}

		log.Println("[AUTH] [INFO] member login succeeded:", account.Email)
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
			"expiresIn":    tokens.ExpiresIn,
			"dashboard":    "member",
			"user": gin.H{
				"id":    account.ID.Hex(),
				"name":  account.Name,
				"email": account.Email,
			},
		})
	}
}

func Refresh(db *mongo.Database, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		plain := strings.TrimSpace(req.RefreshToken)
		if plain == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		hash := hashToken(plain)
		var token models.RefreshToken
		if err := db.Collection("refresh_tokens").FindOne(ctx, bson.M{
			"tokenHash": hash,
			"revoked":   false,
		}).Decode(&token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		if time.Now().After(token.ExpiresAt) {
			_, _ = db.Collection("refresh_tokens").UpdateByID(ctx, token.ID, bson.M{"$set": bson.M{"revoked": true}})
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired"})
			return
		}

		var member models.Member
		if err := db.Collection("members").FindOne(ctx, bson.M{"_id": token.MemberID}).Decode(&member); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
			return
		}

		account := &loginAccount{
			ID:    member.ID,
			Name:  member.Name,
			Email: member.Email,
			Role:  "member",
		}

		newTokens, err := issueMemberTokens(c, db, account, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			return
		}

		_, _ = db.Collection("refresh_tokens").UpdateByID(ctx, token.ID, bson.M{
			"$set": bson.M{
				"revoked":         true,
				"replacedByToken": newTokens.RefreshTokenID,
			},
		})

		c.JSON(http.StatusOK, gin.H{
			"accessToken":  newTokens.AccessToken,
			"refreshToken": newTokens.RefreshToken,
			"expiresIn":    newTokens.ExpiresIn,
			"user": gin.H{
				"id":    member.ID.Hex(),
				"name":  member.Name,
				"email": member.Email,
			},
		})
	}
}

func Logout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		plain := strings.TrimSpace(req.RefreshToken)
		if plain == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		hash := hashToken(plain)
		res, err := db.Collection("refresh_tokens").UpdateOne(ctx, bson.M{
			"tokenHash": hash,
			"revoked":   false,
		}, bson.M{"$set": bson.M{"revoked": true}})

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// RequestPasswordReset stores a single-use reset token for the account.
// Mail delivery is handled outside this service; the response is the
// same whether or not the email exists so the endpoint does not leak
// which addresses are registered.
func RequestPasswordReset(db *mongo.Database, resetTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var member models.Member
		err := db.Collection("members").FindOne(ctx, bson.M{"email": email}).Decode(&member)
		if err == mongo.ErrNoDocuments {
			log.Println("[AUTH] [INFO] reset requested for unknown email")
			c.JSON(http.StatusOK, gin.H{"message": "reset email dispatched"})
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] reset lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		plain := generateTokenString()
		if plain == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		reset := models.ResetToken{
			MemberID:  member.ID,
			TokenHash: hashToken(plain),
			ExpiresAt: time.Now().Add(resetTTL),
			Used:      false,
			CreatedAt: time.Now(),
		}
		if _, err := db.Collection("reset_tokens").InsertOne(ctx, reset); err != nil {
			log.Println("[AUTH] [ERROR] reset token insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Println("[AUTH] [INFO] reset token issued for:", email)
		c.JSON(http.StatusOK, gin.H{"message": "reset email dispatched"})
	}
}

func ConfirmPasswordReset(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		hash := hashToken(strings.TrimSpace(req.Token))
		var token models.ResetToken
		if err := db.Collection("reset_tokens").FindOne(ctx, bson.M{
			"tokenHash": hash,
			"used":      false,
		}).Decode(&token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid reset token"})
			return
		}

		if time.Now().After(token.ExpiresAt) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "reset token expired"})
			return
		}

		newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] reset password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "password hash failed"})
			return
		}

		res, err := db.Collection("members").UpdateByID(ctx, token.MemberID, bson.M{
			"$set": bson.M{
				"passwordHash": string(newHash),
				"updatedAt":    time.Now(),
			},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] reset password update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		// A deleted member must not see a success response, and the token
		// stays unburned so the condition is observable.
		if status, msg := resetApplyResult(res.MatchedCount); status != http.StatusOK {
			c.JSON(status, gin.H{"error": msg})
			return
		}

		_, _ = db.Collection("reset_tokens").UpdateByID(ctx, token.ID, bson.M{"$set": bson.M{"used": true}})
		_, _ = db.Collection("refresh_tokens").UpdateMany(ctx,
			bson.M{"memberId": token.MemberID, "revoked": false},
			bson.M{"$set": bson.M{"revoked": true}})

		log.Println("[AUTH] [INFO] password reset completed for member:", token.MemberID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}

// resetApplyResult maps the member-update match count to the response for
// a password reset confirmation.
func resetApplyResult(matched int64) (int, string) {
	if matched == 0 {
		return http.StatusNotFound, "account not found"
	}
	return http.StatusOK, ""
}

func issueAccessToken(account *loginAccount, secret string, accessTTL time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   account.ID.Hex(),
		"role":  account.Role,
		"email": account.Email,
		"name":  account.Name,
		"exp":   time.Now().Add(accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

type issuedTokens struct {
	AccessToken    string
	RefreshToken   string
	RefreshTokenID primitive.ObjectID
	ExpiresIn      int64
}

func issueMemberTokens(c *gin.Context, db *mongo.Database, account *loginAccount, secret string, accessTTL, refreshTTL time.Duration) (*issuedTokens, error) {
	accessToken, err := issueAccessToken(account, secret, accessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return nil, err
	}

	plainRefresh := generateTokenString()
	if plainRefresh == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return nil, errors.New("could not generate refresh token")
	}

	refresh := models.RefreshToken{
		MemberID:  account.ID,
		TokenHash: hashToken(plainRefresh),
		ExpiresAt: time.Now().Add(refreshTTL),
		Revoked:   false,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := db.Collection("refresh_tokens").InsertOne(ctx, refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return nil, err
	}

	refreshID := res.InsertedID.(primitive.ObjectID)
	return &issuedTokens{
		AccessToken:    accessToken,
		RefreshToken:   plainRefresh,
		RefreshTokenID: refreshID,
		ExpiresIn:      int64(accessTTL.Seconds()),
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateTokenString() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
