package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testMemberHex = "64f1b2a3c4d5e6f708192a3b"

func TestVoteDecisionFreshVote(t *testing.T) {
	if got := voteDecision(nil, testMemberHex, "upvote"); got != voteFresh {
		t.Fatalf("expected fresh vote, got %d", got)
	}
}

func TestVoteDecisionCancelSameDirection(t *testing.T) {
	voters := []string{upvoteToken(testMemberHex)}
	if got := voteDecision(voters, testMemberHex, "upvote"); got != voteCancel {
		t.Fatalf("expected cancel, got %d", got)
	}
}

func TestVoteDecisionSwitchOppositeDirection(t *testing.T) {
	voters := []string{upvoteToken(testMemberHex)}
	if got := voteDecision(voters, testMemberHex, "downvote"); got != voteSwitch {
		t.Fatalf("expected switch, got %d", got)
	}
}

func TestVoteDecisionIgnoresOtherMembers(t *testing.T) {
	voters := []string{upvoteToken("000000000000000000000000")}
	if got := voteDecision(voters, testMemberHex, "upvote"); got != voteFresh {
		t.Fatalf("expected fresh vote when only others voted, got %d", got)
	}
}

// Upvote then upvote again must return the tally to its pre-vote state.
func TestVoteToggleRoundTrip(t *testing.T) {
	id := primitive.NewObjectID()

	_, first := buildVoteUpdate(id, nil, testMemberHex, "upvote")
	inc := first["$inc"].(bson.M)
	if inc["upvotes"] != 1 {
		t.Fatalf("expected upvotes +1 on fresh vote, got %#v", inc)
	}

	voters := []string{upvoteToken(testMemberHex)}
	_, second := buildVoteUpdate(id, voters, testMemberHex, "upvote")
	inc = second["$inc"].(bson.M)
	if inc["upvotes"] != -1 {
		t.Fatalf("expected upvotes -1 on repeat vote, got %#v", inc)
	}
	pull := second["$pull"].(bson.M)
	if pull["voters"] != upvoteToken(testMemberHex) {
		t.Fatalf("expected token removal on repeat vote, got %#v", pull)
	}
}

// Upvote then downvote must decrement upvotes and increment downvotes.
func TestVoteSwitchAdjustsBothCounters(t *testing.T) {
	id := primitive.NewObjectID()
	voters := []string{upvoteToken(testMemberHex)}

	filter, update := buildVoteUpdate(id, voters, testMemberHex, "downvote")

	if filter["voters"] != upvoteToken(testMemberHex) {
		t.Fatalf("expected filter to guard on the held token, got %#v", filter)
	}
	inc := update["$inc"].(bson.M)
	if inc["downvotes"] != 1 || inc["upvotes"] != -1 {
		t.Fatalf("expected downvotes +1 and upvotes -1, got %#v", inc)
	}
	set := update["$set"].(bson.M)
	if set["voters.$"] != downvoteToken(testMemberHex) {
		t.Fatalf("expected held token rewritten in place, got %#v", set)
	}
}

func TestFreshVoteFilterGuardsAgainstExistingTokens(t *testing.T) {
	id := primitive.NewObjectID()

	filter, _ := buildVoteUpdate(id, nil, testMemberHex, "downvote")

	guard, ok := filter["voters"].(bson.M)
	if !ok {
		t.Fatalf("expected $nin guard on voters, got %#v", filter)
	}
	tokens := guard["$nin"].([]string)
	if len(tokens) != 2 {
		t.Fatalf("expected both direction tokens in guard, got %#v", tokens)
	}
}

func TestVoteDirection(t *testing.T) {
	if got := voteDirection([]string{downvoteToken(testMemberHex)}, testMemberHex); got != "downvote" {
		t.Fatalf("expected downvote, got %q", got)
	}
	if got := voteDirection(nil, testMemberHex); got != "" {
		t.Fatalf("expected empty direction, got %q", got)
	}
}
