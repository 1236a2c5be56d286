package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestFindVehicle_InvalidID(t *testing.T) {
	coll := &MongoVehicleCollection{Collection: nil}
	_, err := coll.FindVehicle(context.Background(), "not-a-hex-id", "biz-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for invalid id, got %v", err)
	}
}

func TestClaimVehicle_InvalidID(t *testing.T) {
	coll := &MongoVehicleCollection{Collection: nil}
	err := coll.ClaimVehicle(context.Background(), "not-a-hex-id", "biz-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for invalid id, got %v", err)
	}
}

// Integration test (requires running MongoDB)
func TestClaimVehicle_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	defer client.Disconnect(context.Background())

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "forklift_safety_test"
	}
	coll := &MongoVehicleCollection{Collection: client.Database(dbName).Collection("vehicles")}

	created, err := coll.InsertVehicle(ctx, models.Vehicle{
		BusinessID:   "biz-test",
		SerialNumber: "FLT-TEST-001",
		Status:       models.VehicleAvailable,
	})
	if err != nil {
		t.Fatalf("expected insert to succeed, got error: %v", err)
	}
	id := created.ID.Hex()

	// First claim takes the vehicle.
	if err := coll.ClaimVehicle(ctx, id, "biz-test"); err != nil {
		t.Fatalf("expected first claim to succeed, got error: %v", err)
	}

	// Second claim must lose: the vehicle is no longer AVAILABLE.
	err = coll.ClaimVehicle(ctx, id, "biz-test")
	if !errors.Is(err, ErrVehicleClaimed) {
		t.Errorf("expected ErrVehicleClaimed on second claim, got %v", err)
	}

	// Releasing makes it claimable again.
	if err := coll.UpdateVehicleStatus(ctx, id, "biz-test", models.VehicleAvailable); err != nil {
		t.Fatalf("expected release to succeed, got error: %v", err)
	}
	if err := coll.ClaimVehicle(ctx, id, "biz-test"); err != nil {
		t.Errorf("expected claim after release to succeed, got error: %v", err)
	}
}
