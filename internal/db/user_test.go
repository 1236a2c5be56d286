package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

func userTestCollection(t *testing.T) *MongoUserCollection {
	t.Helper()
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	collection := client.Database("forklift_safety_test").Collection("users")
	collection.Drop(context.Background())
	return &MongoUserCollection{Collection: collection}
}

func TestMongoUserCollection_InsertUser(t *testing.T) {
	userCollection := userTestCollection(t)

	user := models.User{
		BusinessID:   "biz-test",
		Username:     "operator1",
		Email:        "operator1@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleOperator,
	}

	err := userCollection.InsertUser(context.Background(), user)
	assert.NoError(t, err)

	// Verify user was inserted
	var foundUser models.User
	err = userCollection.Collection.FindOne(context.Background(), bson.M{"username": "operator1"}).Decode(&foundUser)
	assert.NoError(t, err)
	assert.Equal(t, user.Username, foundUser.Username)
	assert.Equal(t, user.BusinessID, foundUser.BusinessID)
	assert.Equal(t, user.Role, foundUser.Role)
	assert.True(t, foundUser.IsActive)
	assert.NotZero(t, foundUser.CreatedAt)
}

func TestMongoUserCollection_FindUserByUsername(t *testing.T) {
	userCollection := userTestCollection(t)

	user := models.User{
		BusinessID:   "biz-test",
		Username:     "operator1",
		Email:        "operator1@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleOperator,
	}

	err := userCollection.InsertUser(context.Background(), user)
	require.NoError(t, err)

	foundUser, err := userCollection.FindUserByUsername(context.Background(), "operator1")
	assert.NoError(t, err)
	assert.Equal(t, user.Username, foundUser.Username)
	assert.Equal(t, user.Email, foundUser.Email)

	// Test with non-existent username
	_, err = userCollection.FindUserByUsername(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoUserCollection_UpdateLastLogin(t *testing.T) {
	userCollection := userTestCollection(t)

	user := models.User{
		BusinessID:   "biz-test",
		Username:     "operator1",
		Email:        "operator1@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleOperator,
	}

	err := userCollection.InsertUser(context.Background(), user)
	require.NoError(t, err)

	var insertedUser models.User
	err = userCollection.Collection.FindOne(context.Background(), bson.M{"username": "operator1"}).Decode(&insertedUser)
	require.NoError(t, err)

	err = userCollection.UpdateLastLogin(context.Background(), insertedUser.ID.Hex())
	assert.NoError(t, err)

	updatedUser, err := userCollection.FindUserByID(context.Background(), insertedUser.ID.Hex())
	assert.NoError(t, err)
	assert.NotNil(t, updatedUser.LastLogin)
}
