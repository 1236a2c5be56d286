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

// CheckCollection defines the interface for pre-shift check operations.
type CheckCollection interface {
	InsertCheck(ctx context.Context, check models.Check) (*models.Check, error)
	FindCheckByID(ctx context.Context, id string) (*models.Check, error)
	FindChecks(ctx context.Context, filter bson.M) ([]models.Check, error)
}

// MongoCheckCollection implements CheckCollection for MongoDB.
type MongoCheckCollection struct {
	Collection *mongo.Collection
}

// InsertCheck inserts a check record and returns it with its id.
func (c *MongoCheckCollection) InsertCheck(ctx context.Context, check models.Check) (*models.Check, error) {
	check.CreatedAt = time.Now()

	result, err := c.Collection.InsertOne(ctx, check)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		check.ID = oid
	}
	return &check, nil
}

// FindCheckByID finds a check by its id.
func (c *MongoCheckCollection) FindCheckByID(ctx context.Context, id string) (*models.Check, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var check models.Check
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&check)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &check, nil
}

// FindChecks queries check records, most recent first.
func (c *MongoCheckCollection) FindChecks(ctx context.Context, filter bson.M) ([]models.Check, error) {
	opts := optionsFindNewestFirst("completed_at")
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var checks []models.Check
	if err := cursor.All(ctx, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}
