// auth/token_store.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisTokenStore implements TokenStore using Redis. Tokens are written under
// a single fixed key: the server serves exactly one authorized identity.
type RedisTokenStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisTokenStore creates a new Redis-backed token store
func NewRedisTokenStore(client redis.UniversalClient, prefix string) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		prefix: prefix,
	}
}

// key generates the Redis key for the token slot
func (s *RedisTokenStore) key() string {
	return fmt.Sprintf("%s:token", s.prefix)
}

// SaveToken stores the token set
func (s *RedisTokenStore) SaveToken(token *OAuthToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// No TTL: the refresh token must survive past access-token expiry so the
	// server can reconnect after a restart.
	if err := s.client.Set(context.Background(), s.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// GetToken retrieves the token set
func (s *RedisTokenStore) GetToken() (*OAuthToken, error) {
	data, err := s.client.Get(context.Background(), s.key()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var token OAuthToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}

// DeleteToken removes the token set
func (s *RedisTokenStore) DeleteToken() error {
	if err := s.client.Del(context.Background(), s.key()).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	return nil
}
