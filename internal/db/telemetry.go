package db

import (
	"context"
	"errors"

	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TelemetryCollection defines the interface for telemetry data operations.
type TelemetryCollection interface {
	InsertTelemetry(ctx context.Context, telemetry models.Telemetry) error
	LastForVehicle(ctx context.Context, vehicleID string) (*models.Telemetry, error)
}

// MongoTelemetryCollection implements TelemetryCollection for MongoDB.
type MongoTelemetryCollection struct {
	Collection *mongo.Collection
}

// InsertTelemetry inserts a telemetry record into the collection.
func (c *MongoTelemetryCollection) InsertTelemetry(ctx context.Context, telemetry models.Telemetry) error {
	_, err := c.Collection.InsertOne(ctx, telemetry)
	return err
}

// LastForVehicle returns the most recent telemetry record for a vehicle.
func (c *MongoTelemetryCollection) LastForVehicle(ctx context.Context, vehicleID string) (*models.Telemetry, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var telemetry models.Telemetry
	err := c.Collection.FindOne(ctx, bson.M{"vehicle_id": vehicleID}, opts).Decode(&telemetry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &telemetry, nil
}
