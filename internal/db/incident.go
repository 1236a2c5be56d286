package db

import (
	"context"
	"time"

	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IncidentCollection defines the interface for incident report operations.
type IncidentCollection interface {
	InsertIncident(ctx context.Context, incident models.Incident) (*models.Incident, error)
	FindIncidents(ctx context.Context, filter bson.M) ([]models.Incident, error)
}

// MongoIncidentCollection implements IncidentCollection for MongoDB.
type MongoIncidentCollection struct {
	Collection *mongo.Collection
}

// InsertIncident inserts an incident report and returns it with its id.
func (c *MongoIncidentCollection) InsertIncident(ctx context.Context, incident models.Incident) (*models.Incident, error) {
	incident.CreatedAt = time.Now()

	result, err := c.Collection.InsertOne(ctx, incident)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		incident.ID = oid
	}
	return &incident, nil
}

// FindIncidents queries incident reports, most recent first.
func (c *MongoIncidentCollection) FindIncidents(ctx context.Context, filter bson.M) ([]models.Incident, error) {
	cursor, err := c.Collection.Find(ctx, filter, optionsFindNewestFirst("occurred_at"))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var incidents []models.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}
