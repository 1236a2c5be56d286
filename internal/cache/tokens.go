package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenMismatch = errors.New("refresh token mismatch")
)

// Connect opens a redis client using the REDIS_URL environment variable.
func Connect() (*redis.Client, error) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL error: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis.Ping error: %w", err)
	}
	return client, nil
}

// TokenStore keeps one active refresh token per user, with a TTL. Tokens
// rotate on every refresh; presenting a stale token invalidates nothing but
// fails the refresh.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore creates a refresh token store.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func tokenKey(userID string) string {
	return fmt.Sprintf("refresh:%s", userID)
}

// Save stores the user's current refresh token, replacing any previous one.
func (s *TokenStore) Save(ctx context.Context, userID, token string) error {
	if err := s.client.Set(ctx, tokenKey(userID), token, s.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to save refresh token")
		return err
	}
	return nil
}

// Validate checks a presented refresh token against the stored one.
func (s *TokenStore) Validate(ctx context.Context, userID, token string) error {
	stored, err := s.client.Get(ctx, tokenKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrTokenNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to read refresh token")
		return err
	}
	if stored != token {
		return ErrTokenMismatch
	}
	return nil
}

// Delete removes the user's refresh token, ending their refresh chain.
func (s *TokenStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, tokenKey(userID)).Err()
}
