// internal/common/auth/store.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"smartreceipt-billing/internal/common/database"

	"github.com/redis/go-redis/v9"
)

// ErrNoToken is returned when no credentials have been stored yet.
var ErrNoToken = errors.New("auth: no token stored")

// Tokens holds the bearer credentials used against the backend API.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Store persists API credentials between checkout steps. The redirect leg of
// a 3-D Secure flow re-enters the process, so the token must survive it.
type Store interface {
	Get(ctx context.Context) (Tokens, error)
	Set(ctx context.Context, tokens Tokens) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps tokens in process memory. Suitable for tests and
// single-instance deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens Tokens
	set    bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Tokens{}, ErrNoToken
	}
	return s.tokens, nil
}

func (s *MemoryStore) Set(_ context.Context, tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	s.set = true
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	s.set = false
	return nil
}

// RedisStore keeps tokens in Redis so multiple daemon instances can serve
// the redirect callback for a checkout started elsewhere.
type RedisStore struct {
	client *database.RedisClient
	scope  string
	ttl    time.Duration
}

func NewRedisStore(client *database.RedisClient, scope string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, scope: scope, ttl: ttl}
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("auth:tokens:%s", s.scope)
}

func (s *RedisStore) Get(ctx context.Context) (Tokens, error) {
	raw, err := s.client.Get(ctx, s.key())
	if err == redis.Nil {
		return Tokens{}, ErrNoToken
	}
	if err != nil {
		return Tokens{}, fmt.Errorf("auth: redis get failed: %w", err)
	}

	var tokens Tokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return Tokens{}, fmt.Errorf("auth: corrupt token record: %w", err)
	}
	return tokens, nil
}

func (s *RedisStore) Set(ctx context.Context, tokens Tokens) error {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("auth: marshal tokens: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), raw, s.ttl); err != nil {
		return fmt.Errorf("auth: redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()); err != nil {
		return fmt.Errorf("auth: redis del failed: %w", err)
	}
	return nil
}

// TokenProvider yields the access token to attach to an outgoing request.
// An empty string with nil error means the request goes out unauthenticated.
type TokenProvider func(ctx context.Context) (string, error)

// ProviderFromStore adapts a Store into a TokenProvider. A missing token is
// not an error at this layer.
func ProviderFromStore(store Store) TokenProvider {
	return func(ctx context.Context) (string, error) {
		tokens, err := store.Get(ctx)
		if errors.Is(err, ErrNoToken) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return tokens.AccessToken, nil
	}
}
