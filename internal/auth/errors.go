// auth/errors.go
package auth

import (
	"errors"
	"fmt"
)

// ErrTokenNotFound indicates no token set has been stored yet.
var ErrTokenNotFound = errors.New("no token stored")

// ErrMissingRefreshToken indicates the stored token set carries no refresh
// token, so the access token cannot be renewed without re-authorizing.
var ErrMissingRefreshToken = errors.New("token set has no refresh token")

// TokenExchangeError represents a non-2xx response from the token endpoint
// during the authorization-code exchange.
type TokenExchangeError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.Status, e.Body)
}

// RefreshFailedError represents a non-2xx response from the token endpoint
// during a refresh-token grant.
type RefreshFailedError struct {
	Status int
}

// Error implements the error interface.
func (e *RefreshFailedError) Error() string {
	return fmt.Sprintf("token refresh failed with status %d", e.Status)
}
