// Package tokenstore persists authentication tokens in Redis.
//
// Each token maps to the hex ObjectID of the user it authenticates. Keys
// expire after the configured TTL, so an expired token resolves exactly like
// one that never existed.
package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth_"

// ErrNotFound is returned when a token is unknown or has expired.
var ErrNotFound = errors.New("token not found")

// Store holds tokens in Redis with a fixed TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a token store around an existing Redis client.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Put associates token with the given user id hex for the store's TTL.
func (s *Store) Put(ctx context.Context, token, userID string) error {
	return s.rdb.Set(ctx, keyPrefix+token, userID, s.ttl).Err()
}

// Get resolves a token to its user id hex. Returns ErrNotFound for unknown
// or expired tokens.
func (s *Store) Get(ctx context.Context, token string) (string, error) {
	v, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

// Delete invalidates a token. Deleting an absent token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}

// Ping reports whether the Redis backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying Redis client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
