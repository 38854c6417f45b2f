// auth/service.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service performs the OAuth 2.0 grant flows against the WHOOP token endpoint.
// It carries no retry policy of its own; retries live in the fetch layer.
type Service struct {
	config     OAuthConfig
	httpClient *http.Client
}

// NewService creates a new auth service
func NewService(config OAuthConfig) *Service {
	if len(config.Scopes) == 0 {
		config.Scopes = DefaultScopes
	}

	return &Service{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthorizationURL generates the WHOOP authorization URL with the
// caller-supplied CSRF state.
func (s *Service) AuthorizationURL(state string) string {
	u, _ := url.Parse(s.config.AuthURL)
	q := u.Query()

	q.Set("client_id", s.config.ClientID)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(s.config.Scopes, " "))
	q.Set("redirect_uri", s.config.RedirectURI)
	q.Set("state", state)

	u.RawQuery = q.Encode()
	return u.String()
}

// ExchangeCode exchanges an authorization code for a token set.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*OAuthToken, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", s.config.RedirectURI)

	token, status, body, err := s.executeTokenRequest(ctx, data)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &TokenExchangeError{Status: status, Body: body}
	}

	token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return token, nil
}

// Refresh exchanges the refresh token of the given token set for a new one.
// The offline scope is requested again so a new refresh token is issued.
func (s *Service) Refresh(ctx context.Context, token *OAuthToken) (*OAuthToken, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", token.RefreshToken)
	data.Set("scope", "offline")

	newToken, status, _, err := s.executeTokenRequest(ctx, data)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RefreshFailedError{Status: status}
	}

	newToken.ExpiresAt = time.Now().Add(time.Duration(newToken.ExpiresIn) * time.Second)

	// WHOOP rotates refresh tokens, but fall back to the old one if the
	// response omits it.
	if newToken.RefreshToken == "" {
		newToken.RefreshToken = token.RefreshToken
	}

	return newToken, nil
}

// executeTokenRequest performs the actual token request to WHOOP
func (s *Service) executeTokenRequest(ctx context.Context, data url.Values) (*OAuthToken, int, string, error) {
	data.Set("client_id", s.config.ClientID)
	data.Set("client_secret", s.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, 0, "", fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, string(body), nil
	}

	var token OAuthToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, 0, "", fmt.Errorf("failed to parse token response: %w", err)
	}

	return &token, resp.StatusCode, "", nil
}
