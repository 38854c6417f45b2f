// auth/store.go
package auth

import (
	"context"
	"errors"
	"log"
)

// CredentialStore resolves the current token set across the per-request scope
// and the process-wide fallback store. Absence is not an error; callers treat
// a nil token as "not yet authorized".
type CredentialStore struct {
	fallback TokenStore
}

// NewCredentialStore creates a credential store over the given fallback.
func NewCredentialStore(fallback TokenStore) *CredentialStore {
	return &CredentialStore{fallback: fallback}
}

// Get returns the request-scoped token set if present, else the process-wide
// fallback, else nil.
func (c *CredentialStore) Get(ctx context.Context) *OAuthToken {
	if scope := ScopeFromContext(ctx); scope != nil {
		if token := scope.Token(); token != nil {
			return token
		}
	}

	return c.Latest()
}

// Set writes the token set into the request scope synchronously and mirrors it
// into the process-wide fallback.
func (c *CredentialStore) Set(ctx context.Context, token *OAuthToken) {
	if scope := ScopeFromContext(ctx); scope != nil {
		scope.SetToken(token)
	}

	if err := c.fallback.SaveToken(token); err != nil {
		log.Printf("Warning: failed to save token to fallback store: %v", err)
	}
}

// Latest returns the process-wide token set, ignoring any request scope.
func (c *CredentialStore) Latest() *OAuthToken {
	token, err := c.fallback.GetToken()
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			log.Printf("Warning: failed to read token from fallback store: %v", err)
		}
		return nil
	}
	return token
}

// Delete removes the stored token set.
func (c *CredentialStore) Delete(ctx context.Context) error {
	if scope := ScopeFromContext(ctx); scope != nil {
		scope.SetToken(nil)
	}
	return c.fallback.DeleteToken()
}
