// whoopclient/client.go
package whoopclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/fitproxy/whoopserver/internal/auth"
)

// CredentialSource resolves and persists the token set used for upstream calls.
type CredentialSource interface {
	// Get returns the token for the current request scope, falling back to the
	// process-wide store. Nil means not yet authorized.
	Get(ctx context.Context) *auth.OAuthToken

	// Set replaces the token set in the request scope and mirrors it into the
	// process-wide store.
	Set(ctx context.Context, tok *auth.OAuthToken)

	// Latest returns the most recent process-wide token, ignoring any request
	// scope. Used to detect a refresh that raced ahead of this call.
	Latest() *auth.OAuthToken
}

// TokenRefresher exchanges a refresh token for a new token set.
type TokenRefresher interface {
	Refresh(ctx context.Context, tok *auth.OAuthToken) (*auth.OAuthToken, error)
}

// RetryPolicy controls retries of transient upstream failures.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is multiplied by the attempt number for linear backoff.
	BaseDelay time.Duration
}

// DefaultRetryPolicy retries twice after the initial attempt with a 300ms step.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   300 * time.Millisecond,
}

// Client performs authenticated requests against the WHOOP API, refreshing the
// access token transparently on a 401 and retrying transient server errors.
type Client struct {
	httpClient *http.Client
	creds      CredentialSource
	refresher  TokenRefresher
	retry      RetryPolicy

	// refreshMu serializes refreshes so two concurrent 401s cannot each burn a
	// refresh token against the upstream.
	refreshMu sync.Mutex
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(client *Client) {
		client.retry = p
	}
}

// NewClient creates an authenticated WHOOP API client.
func NewClient(creds CredentialSource, refresher TokenRefresher, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds:      creds,
		refresher:  refresher,
		retry:      DefaultRetryPolicy,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch performs an authenticated GET against the given URL and returns the
// parsed JSON body. A 401 triggers exactly one refresh-and-retry; transport
// errors and 5xx responses are retried within the retry budget.
func (c *Client) Fetch(ctx context.Context, rawurl string) (map[string]interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retry.BaseDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch aborted during backoff: %w", ctx.Err())
			}
		}

		body, retryable, err := c.attempt(ctx, rawurl)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// attempt runs one full fetch step: resolve credentials, issue the GET, and on
// a 401 refresh once and repeat the GET with the new access token. The second
// return value reports whether the failure is retryable.
func (c *Client) attempt(ctx context.Context, rawurl string) (map[string]interface{}, bool, error) {
	tok := c.creds.Get(ctx)
	if tok == nil || tok.AccessToken == "" {
		return nil, false, ErrNotConnected
	}

	resp, err := c.do(ctx, rawurl, tok.AccessToken)
	if err != nil {
		return nil, true, fmt.Errorf("whoop request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		fresh, refreshErr := c.refreshToken(ctx, tok)
		if refreshErr != nil {
			return nil, false, refreshErr
		}

		resp, err = c.do(ctx, rawurl, fresh.AccessToken)
		if err != nil {
			return nil, true, fmt.Errorf("whoop request failed after refresh: %w", err)
		}
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read whoop response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstreamErr := &UpstreamError{Status: resp.StatusCode, Body: string(body)}
		return nil, resp.StatusCode >= 500, upstreamErr
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, fmt.Errorf("failed to parse whoop response: %w", err)
	}

	return parsed, false, nil
}

// do issues a single bearer-authenticated GET.
func (c *Client) do(ctx context.Context, rawurl, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// refreshToken performs a single serialized refresh. If another in-flight call
// already replaced the token while we waited on the lock, its result is
// adopted instead of spending a second refresh.
func (c *Client) refreshToken(ctx context.Context, stale *auth.OAuthToken) (*auth.OAuthToken, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if cur := c.creds.Latest(); cur != nil && cur.AccessToken != "" && cur.AccessToken != stale.AccessToken {
		c.creds.Set(ctx, cur)
		return cur, nil
	}

	fresh, err := c.refresher.Refresh(ctx, stale)
	if err != nil {
		return nil, err
	}

	c.creds.Set(ctx, fresh)
	return fresh, nil
}
