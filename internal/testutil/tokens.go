// internal/testutil/tokens.go
package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrTokenNotFound is returned by TokenMap for unknown tokens.
var ErrTokenNotFound = errors.New("token not found")

// TokenMap is an in-memory token store for tests. It satisfies the token
// store interfaces the auth and authapi packages consume, without needing a
// running Redis.
type TokenMap struct {
	mu sync.Mutex
	m  map[string]string
}

// NewTokenMap creates an empty TokenMap.
func NewTokenMap() *TokenMap {
	return &TokenMap{m: make(map[string]string)}
}

// Put associates token with the given user id hex.
func (s *TokenMap) Put(ctx context.Context, token, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[token] = userID
	return nil
}

// Get resolves a token to its user id hex.
func (s *TokenMap) Get(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	return v, nil
}

// Delete removes a token.
func (s *TokenMap) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}

// Ping always succeeds.
func (s *TokenMap) Ping(ctx context.Context) error {
	return nil
}

// Len reports how many tokens are stored.
func (s *TokenMap) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
