package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildRedevelopmentFormDefaultsToPending(t *testing.T) {
	memberID := primitive.NewObjectID()
	now := time.Now()
	req := redevelopmentRequest{
		Name:       "  Asha Rao ",
		Phone:      "9876543210",
		Email:      " Asha@Example.COM ",
		UnitNumber: " B-204 ",
	}

	form := buildRedevelopmentForm(memberID, req, nil, now)

	if form.Status != "pending" {
		t.Fatalf("expected status pending, got %q", form.Status)
	}
	if form.Name != "Asha Rao" {
		t.Fatalf("expected trimmed name, got %q", form.Name)
	}
	if form.Email != "asha@example.com" {
		t.Fatalf("expected lowercased email, got %q", form.Email)
	}
	if form.MemberID != memberID {
		t.Fatalf("expected memberId %s, got %s", memberID.Hex(), form.MemberID.Hex())
	}
}

func TestInitialFormCommentBlankProducesNoRow(t *testing.T) {
	formID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	now := time.Now()

	for _, text := range []string{"", "   ", "\t\n"} {
		if got := initialFormComment(formID, memberID, text, now); got != nil {
			t.Fatalf("expected nil comment for %q, got %+v", text, got)
		}
	}
}

func TestInitialFormCommentCarriesSubmitterDetails(t *testing.T) {
	formID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	now := time.Now()

	comment := initialFormComment(formID, memberID, "  please expedite  ", now)
	if comment == nil {
		t.Fatal("expected a comment row")
	}
	if comment.Text != "please expedite" {
		t.Fatalf("expected trimmed text, got %q", comment.Text)
	}
	if comment.AuthorRole != "member" {
		t.Fatalf("expected author role member, got %q", comment.AuthorRole)
	}
	if comment.FormID != formID || comment.AuthorID != memberID {
		t.Fatal("expected comment bound to form and submitter")
	}
	if comment.ID == "" {
		t.Fatal("expected a generated comment id")
	}
}
