package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error)
	FindVehicle(ctx context.Context, vehicleID, businessID string) (*models.Vehicle, error)
	FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error)
	ClaimVehicle(ctx context.Context, vehicleID, businessID string) error
	UpdateVehicleStatus(ctx context.Context, vehicleID, businessID string, status models.VehicleStatus) error
}

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record and returns it with its id.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error) {
	now := time.Now()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleAvailable
	}

	result, err := c.Collection.InsertOne(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		vehicle.ID = oid
	}
	return &vehicle, nil
}

// FindVehicle finds a vehicle by id within a business.
func (c *MongoVehicleCollection) FindVehicle(ctx context.Context, vehicleID, businessID string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, ErrNotFound
	}

	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID, "business_id": businessID}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindVehicles queries vehicle records.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// ClaimVehicle marks a vehicle IN_USE, conditional on it still being
// AVAILABLE. The status qualifier in the filter makes the write a
// compare-and-swap, so two concurrent claims cannot both succeed.
func (c *MongoVehicleCollection) ClaimVehicle(ctx context.Context, vehicleID, businessID string) error {
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return ErrNotFound
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID, "business_id": businessID, "status": models.VehicleAvailable},
		bson.M{"$set": bson.M{"status": models.VehicleInUse, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrVehicleClaimed
	}
	return nil
}

// UpdateVehicleStatus sets a vehicle's status unconditionally. Used for
// releases and compensating writes, where the prior status is already known.
func (c *MongoVehicleCollection) UpdateVehicleStatus(ctx context.Context, vehicleID, businessID string, status models.VehicleStatus) error {
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return ErrNotFound
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID, "business_id": businessID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
