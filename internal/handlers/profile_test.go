package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func sampleFamily(memberID primitive.ObjectID) []models.FamilyMember {
	return []models.FamilyMember{
		{ID: "fm-1", MemberID: memberID, Name: "Asha", Relation: "spouse", Age: 38},
		{ID: "fm-2", MemberID: memberID, Name: "Dev", Relation: "son", Age: 9},
	}
}

func TestDiffFamilyMembersIdenticalSubmissionIsIdempotent(t *testing.T) {
	memberID := primitive.NewObjectID()
	existing := sampleFamily(memberID)

	diff, ok := diffFamilyMembers(existing, existing)
	if !ok {
		t.Fatal("expected diff to accept known ids")
	}
	if len(diff.Inserts) != 0 || len(diff.Deletes) != 0 {
		t.Fatalf("expected no inserts or deletes, got %d/%d", len(diff.Inserts), len(diff.Deletes))
	}
	if len(diff.Updates) != 2 {
		t.Fatalf("expected all rows updated in place, got %d", len(diff.Updates))
	}
	if diff.Updates[0].ID != "fm-1" || diff.Updates[1].ID != "fm-2" {
		t.Fatal("expected stable ids preserved across resubmission")
	}
}

func TestDiffFamilyMembersInsertAndDelete(t *testing.T) {
	memberID := primitive.NewObjectID()
	existing := sampleFamily(memberID)
	incoming := []models.FamilyMember{
		existing[0],
		{MemberID: memberID, Name: "Meera", Relation: "daughter", Age: 2},
	}

	diff, ok := diffFamilyMembers(existing, incoming)
	if !ok {
		t.Fatal("expected diff to succeed")
	}
	if len(diff.Inserts) != 1 || diff.Inserts[0].ID == "" {
		t.Fatalf("expected one insert with a generated id, got %#v", diff.Inserts)
	}
	if len(diff.Deletes) != 1 || diff.Deletes[0] != "fm-2" {
		t.Fatalf("expected fm-2 deleted, got %#v", diff.Deletes)
	}
	if len(diff.Updates) != 1 || diff.Updates[0].ID != "fm-1" {
		t.Fatalf("expected fm-1 updated, got %#v", diff.Updates)
	}
}

func TestDiffVehiclesRejectsForeignID(t *testing.T) {
	memberID := primitive.NewObjectID()
	existing := []models.Vehicle{
		{ID: "veh-1", MemberID: memberID, Type: "car", PlateNumber: "MH01AB1234"},
	}
	incoming := []models.Vehicle{
		{ID: "veh-999", MemberID: memberID, Type: "car", PlateNumber: "MH01AB1234"},
	}

	if _, ok := diffVehicles(existing, incoming); ok {
		t.Fatal("expected diff to reject an id that is not this member's")
	}
}

func TestNormalizeVehicleClearsEndDateWhenCurrent(t *testing.T) {
	memberID := primitive.NewObjectID()

	vehicle, err := normalizeVehicle(vehicleInput{
		Type:        "car",
		PlateNumber: "MH01AB1234",
		IsCurrent:   true,
		OwnedFrom:   "2020-06-01",
		OwnedUntil:  "2024-01-15",
	}, memberID)
	if err != nil {
		t.Fatalf("normalizeVehicle returned error: %v", err)
	}

	if vehicle.OwnedUntil != nil {
		t.Fatal("expected current vehicle to have no end date")
	}
	if vehicle.OwnedFrom == nil || vehicle.OwnedFrom.Year() != 2020 {
		t.Fatalf("expected start date preserved, got %v", vehicle.OwnedFrom)
	}
}

func TestParseDateString(t *testing.T) {
	if got, err := parseDateString(""); err != nil || got != nil {
		t.Fatalf("expected nil for empty input, got %v/%v", got, err)
	}
	if got, err := parseDateString("2026-03-15"); err != nil || got.Day() != 15 {
		t.Fatalf("expected date-only form parsed, got %v/%v", got, err)
	}
	if got, err := parseDateString("2026-03-15T10:30:00Z"); err != nil || got.Hour() != 10 {
		t.Fatalf("expected RFC3339 fallback, got %v/%v", got, err)
	}
	if _, err := parseDateString("15/03/2026"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
