// auth/token_store_fallback.go
package auth

import (
	"context"
	"log"
	"sync"
	"time"
)

// FallbackTokenStore keeps the token set in a local single-slot cache and
// mirrors writes into Redis when one is configured and healthy. Without Redis
// it degrades to in-memory storage that is lost on restart.
type FallbackTokenStore struct {
	redisStore  *RedisTokenStore // nil when no durable mirror is configured
	local       *OAuthToken
	cacheMutex  sync.RWMutex
	healthCheck func() bool
}

// NewFallbackTokenStore creates a token store with an optional Redis mirror.
// Pass a nil redisStore for in-memory-only operation.
func NewFallbackTokenStore(redisStore *RedisTokenStore, healthCheck func() bool) *FallbackTokenStore {
	if healthCheck == nil {
		healthCheck = func() bool { return false }
	}

	return &FallbackTokenStore{
		redisStore:  redisStore,
		healthCheck: healthCheck,
	}
}

// SaveToken stores the token set locally and mirrors it to Redis in the
// background. The local write is synchronous so concurrent readers observe a
// refresh immediately.
func (s *FallbackTokenStore) SaveToken(token *OAuthToken) error {
	s.cacheMutex.Lock()
	s.local = token
	s.cacheMutex.Unlock()

	if s.redisStore != nil && s.healthCheck() {
		go func() {
			if err := s.redisStore.SaveToken(token); err != nil {
				log.Printf("Warning: failed to mirror token to Redis: %v", err)
			}
		}()
	}

	return nil
}

// GetToken retrieves the token set, preferring the local cache. The local
// slot is authoritative while the process runs; Redis is only consulted to
// survive restarts.
func (s *FallbackTokenStore) GetToken() (*OAuthToken, error) {
	s.cacheMutex.RLock()
	token := s.local
	s.cacheMutex.RUnlock()

	if token != nil {
		return token, nil
	}

	if s.redisStore != nil && s.healthCheck() {
		token, err := s.redisStore.GetToken()
		if err != nil {
			return nil, err
		}

		s.cacheMutex.Lock()
		s.local = token
		s.cacheMutex.Unlock()
		return token, nil
	}

	return nil, ErrTokenNotFound
}

// DeleteToken removes the token set from both stores
func (s *FallbackTokenStore) DeleteToken() error {
	s.cacheMutex.Lock()
	s.local = nil
	s.cacheMutex.Unlock()

	if s.redisStore != nil && s.healthCheck() {
		if err := s.redisStore.DeleteToken(); err != nil {
			log.Printf("Warning: failed to delete token from Redis: %v", err)
		}
	}

	return nil
}

// StartReplicationRoutine begins background sync of the local slot to Redis,
// covering mirror writes that were skipped while Redis was unhealthy.
func (s *FallbackTokenStore) StartReplicationRoutine(ctx context.Context) {
	if s.redisStore == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.healthCheck() {
					continue
				}

				s.cacheMutex.RLock()
				token := s.local
				s.cacheMutex.RUnlock()

				if token == nil {
					continue
				}

				if err := s.redisStore.SaveToken(token); err != nil {
					log.Printf("Token replication error: %v", err)
				}
			}
		}
	}()
}
