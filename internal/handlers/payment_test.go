package handlers

import (
	"strings"
	"testing"
	"time"
)

func TestNewTxnIDFormat(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	id, err := newTxnID(now)
	if err != nil {
		t.Fatalf("newTxnID returned error: %v", err)
	}

	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != "TXN" || parts[1] != "20260102" {
		t.Fatalf("unexpected txn id format: %s", id)
	}
	if parts[2] != strings.ToUpper(parts[2]) {
		t.Fatalf("expected uppercase suffix, got %s", parts[2])
	}
}
