package handlers

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestCountUnreadSkipsMemberMessagesAndSeenOnes(t *testing.T) {
	viewer := "64f1b2a3c4d5e6f708192a3b"
	other := "000000000000000000000000"

	messages := []models.ChatMessage{
		{SenderRole: "member", ReadBy: []string{viewer}},
		{SenderRole: "admin", ReadBy: []string{"admin-1"}},
		{SenderRole: "admin", ReadBy: []string{"admin-1", viewer}},
		{SenderRole: "admin", ReadBy: []string{"admin-1", other}},
	}

	if got := countUnread(messages, viewer); got != 2 {
		t.Fatalf("expected 2 unread for viewer, got %d", got)
	}
	// The other member's count is independent of the viewer's read state.
	if got := countUnread(messages, other); got != 2 {
		t.Fatalf("expected 2 unread for other member, got %d", got)
	}
}

func TestCountUnreadZeroAfterMarkingRead(t *testing.T) {
	viewer := "64f1b2a3c4d5e6f708192a3b"
	messages := []models.ChatMessage{
		{SenderRole: "admin", ReadBy: []string{"admin-1"}},
		{SenderRole: "admin", ReadBy: []string{"admin-1"}},
	}

	for i := range messages {
		messages[i].ReadBy = append(messages[i].ReadBy, viewer)
	}

	if got := countUnread(messages, viewer); got != 0 {
		t.Fatalf("expected 0 unread after marking read, got %d", got)
	}
}

func TestNewChatMessageStampsOwnerAndSeedsReadBy(t *testing.T) {
	owner := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	now := time.Now()

	complaint := &models.Complaint{
		ComplaintID: "CMP-20260828-A1B2C3",
		MemberID:    owner,
	}

	message := newChatMessage(complaint, admin, "admin", "  water leak update  ", now)

	if message.OwnerID != owner {
		t.Fatalf("expected owner %s on message, got %s", owner.Hex(), message.OwnerID.Hex())
	}
	if message.ComplaintID != complaint.ComplaintID {
		t.Fatalf("expected complaint id %s, got %s", complaint.ComplaintID, message.ComplaintID)
	}
	if message.Text != "water leak update" {
		t.Fatalf("expected trimmed text, got %q", message.Text)
	}
	if len(message.ReadBy) != 1 || message.ReadBy[0] != admin.Hex() {
		t.Fatalf("expected sender alone in readBy, got %v", message.ReadBy)
	}
	// The owner has not seen it, so it counts as unread for them.
	if got := countUnread([]models.ChatMessage{message}, owner.Hex()); got != 1 {
		t.Fatalf("expected 1 unread for owner, got %d", got)
	}
}

func TestNewComplaintIDFormat(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	id, err := newComplaintID(now)
	if err != nil {
		t.Fatalf("newComplaintID returned error: %v", err)
	}

	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != "CMP" || parts[1] != "20260828" {
		t.Fatalf("unexpected complaint id format: %s", id)
	}
	if len(parts[2]) != 6 {
		t.Fatalf("expected 6-char suffix, got %s", parts[2])
	}

	second, err := newComplaintID(now)
	if err != nil {
		t.Fatalf("newComplaintID returned error: %v", err)
	}
	if second == id {
		t.Fatal("expected distinct ids for the same instant")
	}
}
