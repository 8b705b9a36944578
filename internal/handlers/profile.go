package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type familyMemberInput struct {
	ID       string `json:"id"`
	Name     string `json:"name" binding:"required"`
	Relation string `json:"relation" binding:"required"`
	Age      int    `json:"age" binding:"min=0"`
}

type vehicleInput struct {
	ID             string `json:"id"`
	Type           string `json:"type" binding:"required"`
	PlateNumber    string `json:"plateNumber" binding:"required"`
	Model          string `json:"model"`
	IsCurrent      bool   `json:"isCurrent"`
	OwnedFrom      string `json:"ownedFrom"`
	OwnedUntil     string `json:"ownedUntil"`
	RegistrationNo string `json:"registrationNo"`
}

type profileRequest struct {
	Name             string              `json:"name" binding:"required"`
	Phone            string              `json:"phone"`
	IsOwner          bool                `json:"isOwner"`
	AlternateAddress string              `json:"alternateAddress"`
	TenancyStart     string              `json:"tenancyStart"`
	TenancyEnd       string              `json:"tenancyEnd"`
	FamilyMembers    []familyMemberInput `json:"familyMembers"`
	Vehicles         []vehicleInput      `json:"vehicles"`
}

func GetProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var member models.Member
		if err := db.Collection("members").FindOne(ctx, bson.M{"_id": memberID}).Decode(&member); err != nil {
			log.Println("[PROFILE] [ERROR] member not found:", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}

		family, err := loadFamilyMembers(ctx, db, memberID)
		if err != nil {
			log.Println("[PROFILE] [ERROR] list family members failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		vehicles, err := loadVehicles(ctx, db, memberID)
		if err != nil {
			log.Println("[PROFILE] [ERROR] list vehicles failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"member":        member,
			"familyMembers": family,
			"vehicles":      vehicles,
		})
	}
}

// UpdateProfile saves the root fields and reconciles both child sets
// against the submitted lists. Children are matched by their stable id:
// unknown ids are rejected, omitted ids are deleted, new entries (no id)
// are inserted with a fresh uuid. The whole reconcile runs in one
// transaction so a failure cannot leave the child set half-written.
func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "PROFILE")

		memberID, ok := memberIDFromContext(c)
		if !ok {
			return
		}

		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		tenancyStart, err := parseDateString(req.TenancyStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenancyStart date"})
			return
		}
		tenancyEnd, err := parseDateString(req.TenancyEnd)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenancyEnd date"})
			return
		}

		family := make([]models.FamilyMember, 0, len(req.FamilyMembers))
		for _, input := range req.FamilyMembers {
			family = append(family, models.FamilyMember{
				ID:       strings.TrimSpace(input.ID),
				MemberID: memberID,
				Name:     strings.TrimSpace(input.Name),
				Relation: strings.TrimSpace(input.Relation),
				Age:      input.Age,
			})
		}

		vehicles := make([]models.Vehicle, 0, len(req.Vehicles))
		for _, input := range req.Vehicles {
			vehicle, err := normalizeVehicle(input, memberID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle dates"})
				return
			}
			vehicles = append(vehicles, vehicle)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		existingFamily, err := loadFamilyMembers(ctx, db, memberID)
		if err != nil {
			log.Println("[PROFILE] [ERROR] load family members failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		existingVehicles, err := loadVehicles(ctx, db, memberID)
		if err != nil {
			log.Println("[PROFILE] [ERROR] load vehicles failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		familyDiff, ok := diffFamilyMembers(existingFamily, family)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown family member id"})
			return
		}
		vehicleDiff, ok := diffVehicles(existingVehicles, vehicles)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown vehicle id"})
			return
		}

		rootUpdate := bson.M{
			"name":             strings.TrimSpace(req.Name),
			"phone":            strings.TrimSpace(req.Phone),
			"isOwner":          req.IsOwner,
			"alternateAddress": strings.TrimSpace(req.AlternateAddress),
			"tenancyStart":     tenancyStart,
			"tenancyEnd":       tenancyEnd,
			"updatedAt":        time.Now(),
		}

		session, err := db.Client().StartSession()
		if err != nil {
			log.Println("[PROFILE] [ERROR] start session failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			if _, err := db.Collection("members").UpdateByID(sc, memberID, bson.M{"$set": rootUpdate}); err != nil {
				return nil, err
			}
			if err := applyFamilyDiff(sc, db, memberID, familyDiff); err != nil {
				return nil, err
			}
			if err := applyVehicleDiff(sc, db, memberID, vehicleDiff); err != nil {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			log.Println("[PROFILE] [ERROR] profile sync failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Println("[PROFILE] [INFO] profile updated:", memberID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
	}
}

func normalizeVehicle(input vehicleInput, memberID primitive.ObjectID) (models.Vehicle, error) {
	ownedFrom, err := parseDateString(input.OwnedFrom)
	if err != nil {
		return models.Vehicle{}, err
	}
	ownedUntil, err := parseDateString(input.OwnedUntil)
	if err != nil {
		return models.Vehicle{}, err
	}
	// A vehicle still in use has no end date regardless of input.
	if input.IsCurrent {
		ownedUntil = nil
	}

	return models.Vehicle{
		ID:             strings.TrimSpace(input.ID),
		MemberID:       memberID,
		Type:           strings.TrimSpace(input.Type),
		PlateNumber:    strings.TrimSpace(input.PlateNumber),
		Model:          strings.TrimSpace(input.Model),
		IsCurrent:      input.IsCurrent,
		OwnedFrom:      ownedFrom,
		OwnedUntil:     ownedUntil,
		RegistrationNo: strings.TrimSpace(input.RegistrationNo),
	}, nil
}

type familyDiff struct {
	Inserts []models.FamilyMember
	Updates []models.FamilyMember
	Deletes []string
}

type vehicleDiff struct {
	Inserts []models.Vehicle
	Updates []models.Vehicle
	Deletes []string
}

// diffFamilyMembers matches incoming entries to existing rows by stable
// id. Reports !ok when an incoming id does not belong to this member.
func diffFamilyMembers(existing, incoming []models.FamilyMember) (familyDiff, bool) {
	known := make(map[string]bool, len(existing))
	for _, child := range existing {
		known[child.ID] = true
	}

	var diff familyDiff
	seen := make(map[string]bool, len(incoming))
	for _, child := range incoming {
		if child.ID == "" {
			child.ID = uuid.NewString()
			diff.Inserts = append(diff.Inserts, child)
			continue
		}
		if !known[child.ID] {
			return familyDiff{}, false
		}
		seen[child.ID] = true
		diff.Updates = append(diff.Updates, child)
	}
	for _, child := range existing {
		if !seen[child.ID] {
			diff.Deletes = append(diff.Deletes, child.ID)
		}
	}
	return diff, true
}

func diffVehicles(existing, incoming []models.Vehicle) (vehicleDiff, bool) {
	known := make(map[string]bool, len(existing))
	for _, vehicle := range existing {
		known[vehicle.ID] = true
	}

	var diff vehicleDiff
	seen := make(map[string]bool, len(incoming))
	for _, vehicle := range incoming {
		if vehicle.ID == "" {
			vehicle.ID = uuid.NewString()
			diff.Inserts = append(diff.Inserts, vehicle)
			continue
		}
		if !known[vehicle.ID] {
			return vehicleDiff{}, false
		}
		seen[vehicle.ID] = true
		diff.Updates = append(diff.Updates, vehicle)
	}
	for _, vehicle := range existing {
		if !seen[vehicle.ID] {
			diff.Deletes = append(diff.Deletes, vehicle.ID)
		}
	}
	return diff, true
}

func applyFamilyDiff(ctx context.Context, db *mongo.Database, memberID primitive.ObjectID, diff familyDiff) error {
	coll := db.Collection("family_members")

	if len(diff.Deletes) > 0 {
		if _, err := coll.DeleteMany(ctx, bson.M{
			"memberId": memberID,
			"id":       bson.M{"$in": diff.Deletes},
		}); err != nil {
			return err
		}
	}
	for _, child := range diff.Updates {
		if _, err := coll.UpdateOne(ctx,
			bson.M{"memberId": memberID, "id": child.ID},
			bson.M{"$set": bson.M{
				"name":     child.Name,
				"relation": child.Relation,
				"age":      child.Age,
			}}); err != nil {
			return err
		}
	}
	if len(diff.Inserts) > 0 {
		docs := make([]interface{}, 0, len(diff.Inserts))
		for _, child := range diff.Inserts {
			docs = append(docs, child)
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return err
		}
	}
	return nil
}

func applyVehicleDiff(ctx context.Context, db *mongo.Database, memberID primitive.ObjectID, diff vehicleDiff) error {
	coll := db.Collection("vehicles")

	if len(diff.Deletes) > 0 {
		if _, err := coll.DeleteMany(ctx, bson.M{
			"memberId": memberID,
			"id":       bson.M{"$in": diff.Deletes},
		}); err != nil {
			return err
		}
	}
	for _, vehicle := range diff.Updates {
		if _, err := coll.UpdateOne(ctx,
			bson.M{"memberId": memberID, "id": vehicle.ID},
			bson.M{"$set": bson.M{
				"type":           vehicle.Type,
				"plateNumber":    vehicle.PlateNumber,
				"model":          vehicle.Model,
				"isCurrent":      vehicle.IsCurrent,
				"ownedFrom":      vehicle.OwnedFrom,
				"ownedUntil":     vehicle.OwnedUntil,
				"registrationNo": vehicle.RegistrationNo,
			}}); err != nil {
			return err
		}
	}
	if len(diff.Inserts) > 0 {
		docs := make([]interface{}, 0, len(diff.Inserts))
		for _, vehicle := range diff.Inserts {
			docs = append(docs, vehicle)
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return err
		}
	}
	return nil
}

func loadFamilyMembers(ctx context.Context, db *mongo.Database, memberID primitive.ObjectID) ([]models.FamilyMember, error) {
	cursor, err := db.Collection("family_members").Find(ctx, bson.M{"memberId": memberID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	family := make([]models.FamilyMember, 0)
	if err := cursor.All(ctx, &family); err != nil {
		return nil, err
	}
	return family, nil
}

func loadVehicles(ctx context.Context, db *mongo.Database, memberID primitive.ObjectID) ([]models.Vehicle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isCurrent", Value: -1}})
	cursor, err := db.Collection("vehicles").Find(ctx, bson.M{"memberId": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vehicles := make([]models.Vehicle, 0)
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func memberIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	value, ok := c.Get("memberId")
	if !ok {
		log.Println("[PROFILE] [ERROR] memberId missing in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return primitive.NilObjectID, false
	}
	memberID, ok := value.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return primitive.NilObjectID, false
	}
	return memberID, true
}
