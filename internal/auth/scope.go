// auth/scope.go
package auth

import (
	"context"
	"net/http"
	"sync"
)

// contextKey is a custom type for context keys
type contextKey string

const scopeKey contextKey = "credential_scope"

// Scope holds the token set resolved for a single in-flight request. Each
// request gets its own scope so a refresh mid-request cannot swap tokens out
// from under another handler.
type Scope struct {
	mu    sync.Mutex
	token *OAuthToken
}

// NewScope creates an empty request scope.
func NewScope() *Scope {
	return &Scope{}
}

// Token returns the scope's token set, or nil.
func (s *Scope) Token() *OAuthToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken replaces the scope's token set.
func (s *Scope) SetToken(token *OAuthToken) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// WithScope returns a context carrying a fresh credential scope.
func WithScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey, NewScope())
}

// ScopeFromContext extracts the request's credential scope, or nil.
func ScopeFromContext(ctx context.Context) *Scope {
	scope, _ := ctx.Value(scopeKey).(*Scope)
	return scope
}

// ScopeMiddleware installs a fresh credential scope on every request.
func ScopeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithScope(r.Context())))
	})
}
