package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newEventTestContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/api/events/x", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: primitive.NewObjectID().Hex()}}
	return c, w
}

func TestUpdateEventRejectsMissingFields(t *testing.T) {
	c, w := newEventTestContext(t, `{"venue":"Clubhouse"}`)

	UpdateEvent(nil)(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing required fields, got %d", w.Code)
	}
}

func TestUpdateEventRejectsBadStartDate(t *testing.T) {
	c, w := newEventTestContext(t, `{"title":"Diwali Mela","description":"Annual fair","startsAt":"next friday"}`)

	UpdateEvent(nil)(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparseable startsAt, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "startsAt") {
		t.Fatalf("expected startsAt error, got %s", w.Body.String())
	}
}

func TestUpdateEventRejectsInvalidID(t *testing.T) {
	c, w := newEventTestContext(t, `{"title":"Diwali Mela","description":"Annual fair","startsAt":"2026-11-08"}`)
	c.Params = gin.Params{{Key: "id", Value: "not-a-hex-id"}}

	UpdateEvent(nil)(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid event id, got %d", w.Code)
	}
}
