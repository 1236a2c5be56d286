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

// SessionCollection defines the interface for session record operations.
type SessionCollection interface {
	InsertSession(ctx context.Context, session models.Session) (*models.Session, error)
	FindSessionByID(ctx context.Context, id string) (*models.Session, error)
	FindSessions(ctx context.Context, filter bson.M) ([]models.Session, error)
	UpdateSession(ctx context.Context, id string, session models.Session) (*models.Session, error)
}

// MongoSessionCollection implements SessionCollection for MongoDB.
type MongoSessionCollection struct {
	Collection *mongo.Collection
}

// InsertSession inserts a new session record and returns it with its
// server-assigned id.
func (c *MongoSessionCollection) InsertSession(ctx context.Context, session models.Session) (*models.Session, error) {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := c.Collection.InsertOne(ctx, session)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid
	}
	return &session, nil
}

// FindSessionByID finds a session by its id.
func (c *MongoSessionCollection) FindSessionByID(ctx context.Context, id string) (*models.Session, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var session models.Session
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindSessions queries session records, most recent first.
func (c *MongoSessionCollection) FindSessions(ctx context.Context, filter bson.M) ([]models.Session, error) {
	cursor, err := c.Collection.Find(ctx, filter, optionsFindNewestFirst("start_time"))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateSession replaces a session record by its id and returns the updated
// record.
func (c *MongoSessionCollection) UpdateSession(ctx context.Context, id string, session models.Session) (*models.Session, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	session.ID = objectID
	session.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, session)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return &session, nil
}
