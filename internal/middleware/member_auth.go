package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberAuth validates member JWT tokens and injects the memberId into the
// context as an ObjectID.
func MemberAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerClaims(c, secret)
		if !ok {
			log.Println("[AUTH] [ERROR] member token rejected")
			return
		}

		role, _ := claims["role"].(string)
		if role != "member" {
			log.Println("[AUTH] [ERROR] non-member role on member route:", role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		memberIDValue, ok := claims["sub"].(string)
		if !ok || strings.TrimSpace(memberIDValue) == "" {
			log.Println("[AUTH] [ERROR] sub claim missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		memberID, err := primitive.ObjectIDFromHex(memberIDValue)
		if err != nil {
			log.Println("[AUTH] [ERROR] invalid sub claim")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("memberId", memberID)
		c.Set("memberName", claims["name"])
		c.Next()
	}
}
