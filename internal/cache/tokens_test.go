package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration test (requires running Redis)
func TestTokenStore_Integration(t *testing.T) {
	if os.Getenv("REDIS_URL") == "" {
		t.Skip("REDIS_URL not set, skipping integration test")
		return
	}

	client, err := Connect()
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	defer client.Close()

	store := NewTokenStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-test", "token-a"))
	assert.NoError(t, store.Validate(ctx, "user-test", "token-a"))

	// A rotated token invalidates the previous one.
	require.NoError(t, store.Save(ctx, "user-test", "token-b"))
	assert.ErrorIs(t, store.Validate(ctx, "user-test", "token-a"), ErrTokenMismatch)
	assert.NoError(t, store.Validate(ctx, "user-test", "token-b"))

	require.NoError(t, store.Delete(ctx, "user-test"))
	assert.ErrorIs(t, store.Validate(ctx, "user-test", "token-b"), ErrTokenNotFound)

	// An unknown user has no token.
	assert.ErrorIs(t, store.Validate(ctx, "user-unknown", "whatever"), ErrTokenNotFound)
}
