// auth/models.go
package auth

import (
	"time"
)

// OAuthToken represents the token set issued by WHOOP. Refresh always replaces
// the whole set; fields are never mutated individually.
type OAuthToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	Scope        string    `json:"scope,omitempty"`
}

// TokenStore interface for process-wide token storage implementations. The
// server holds exactly one authorized identity, so stores have a single slot.
type TokenStore interface {
	SaveToken(token *OAuthToken) error
	GetToken() (*OAuthToken, error)
	DeleteToken() error
}

// OAuthConfig holds OAuth 2.0 configuration
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
}

// DefaultScopes are the WHOOP scopes requested on authorization. The offline
// scope is required so refresh tokens are issued.
var DefaultScopes = []string{
	"read:profile",
	"read:body_measurement",
	"read:cycles",
	"read:recovery",
	"read:sleep",
	"read:workout",
	"offline",
}
