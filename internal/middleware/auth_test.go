package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "middleware-test-secret"

func newAuthTestContext(t *testing.T, bearer string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/member/profile", nil)
	if bearer != "" {
		c.Request.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c, rec
}

func signedToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestMemberAuthRejectsWrongSigningMethod(t *testing.T) {
	memberID := primitive.NewObjectID()
	token := signedToken(t, jwt.SigningMethodHS384, jwt.MapClaims{
		"sub":  memberID.Hex(),
		"role": "member",
		"name": "Asha Rao",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	c, rec := newAuthTestContext(t, token)
	MemberAuth(testSecret)(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for HS384-signed token, got %d", rec.Code)
	}
	if !c.IsAborted() {
		t.Fatal("expected request to be aborted")
	}
	if _, exists := c.Get("memberId"); exists {
		t.Fatal("memberId must not be injected for a rejected token")
	}
}

func TestMemberAuthAcceptsValidToken(t *testing.T) {
	memberID := primitive.NewObjectID()
	token := signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  memberID.Hex(),
		"role": "member",
		"name": "Asha Rao",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	c, rec := newAuthTestContext(t, token)
	MemberAuth(testSecret)(c)

	if c.IsAborted() {
		t.Fatalf("expected request to pass, got status %d", rec.Code)
	}
	got, exists := c.Get("memberId")
	if !exists {
		t.Fatal("expected memberId in context")
	}
	if got.(primitive.ObjectID) != memberID {
		t.Fatalf("expected memberId %s, got %v", memberID.Hex(), got)
	}
}

func TestMemberAuthRejectsAdminRole(t *testing.T) {
	token := signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  primitive.NewObjectID().Hex(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	c, rec := newAuthTestContext(t, token)
	MemberAuth(testSecret)(c)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin token on member route, got %d", rec.Code)
	}
}

func TestParseBearerClaimsRejectsMissingHeader(t *testing.T) {
	c, rec := newAuthTestContext(t, "")
	AuthGuard(testSecret)(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing header, got %d", rec.Code)
	}
}
