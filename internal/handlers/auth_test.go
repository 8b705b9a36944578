package handlers

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestIdentityFilterMatchesUnitNumberOrEmail(t *testing.T) {
	filter := identityFilter(" A-101 ")

	clauses, ok := filter["$or"].([]bson.M)
	if !ok || len(clauses) != 2 {
		t.Fatalf("expected two $or clauses, got %#v", filter)
	}
	if clauses[0]["email"] != "a-101" {
		t.Fatalf("expected lowercased email clause, got %#v", clauses[0])
	}
	if clauses[1]["unitNumber"] != "A-101" {
		t.Fatalf("expected trimmed unitNumber clause preserving case, got %#v", clauses[1])
	}
}

func TestIdentityFilterLowercasesEmailInput(t *testing.T) {
	filter := identityFilter("R.Shah@X.com")

	clauses := filter["$or"].([]bson.M)
	if clauses[0]["email"] != "r.shah@x.com" {
		t.Fatalf("expected lowercased email, got %#v", clauses[0])
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	a := hashToken("some-refresh-token")
	b := hashToken("some-refresh-token")
	if a != b {
		t.Fatal("expected identical hashes for identical tokens")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if hashToken("other-token") == a {
		t.Fatal("expected different hashes for different tokens")
	}
}

func TestGenerateTokenString(t *testing.T) {
	token := generateTokenString()
	if len(token) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(token))
	}
	if token == generateTokenString() {
		t.Fatal("expected distinct tokens across calls")
	}
}

func TestResetApplyResultMissingMemberIsNotFound(t *testing.T) {
	status, msg := resetApplyResult(0)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unmatched member, got %d", status)
	}
	if msg != "account not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestResetApplyResultMatchedMemberSucceeds(t *testing.T) {
	status, _ := resetApplyResult(1)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for matched member, got %d", status)
	}
}

func TestLowerCamel(t *testing.T) {
	if got := lowerCamel("UnitNumber"); got != "unitNumber" {
		t.Fatalf("expected unitNumber, got %s", got)
	}
	if got := lowerCamel(""); got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}
