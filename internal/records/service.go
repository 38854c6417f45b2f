// records/service.go
package records

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fitproxy/whoopserver/pkg/whoopclient"
)

// resourcePaths maps the simplified resource names onto the versioned WHOOP
// collection endpoints.
var resourcePaths = map[string]string{
	"cycle":    "/cycle",
	"recovery": "/recovery",
	"sleep":    "/activity/sleep",
	"workout":  "/activity/workout",
}

// ListRequest describes a simplified list query. Count is the desired total
// record count, not a per-page limit.
type ListRequest struct {
	Start     string
	End       string
	Count     int
	NextToken string
}

// Service exposes the simplified read operations over the WHOOP resource
// endpoints.
type Service struct {
	client  *whoopclient.Client
	baseURL string
}

// NewService creates a new records service
func NewService(client *whoopclient.Client, baseURL string) *Service {
	return &Service{
		client:  client,
		baseURL: baseURL,
	}
}

// KnownResource reports whether the resource name maps to an upstream
// collection.
func KnownResource(resource string) bool {
	_, ok := resourcePaths[resource]
	return ok
}

// List auto-paginates the named collection until the requested count is
// satisfied or the collection is exhausted.
func (s *Service) List(ctx context.Context, resource string, req ListRequest) (*whoopclient.Page, error) {
	path, ok := resourcePaths[resource]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", resource)
	}

	return s.client.FetchAuto(ctx, s.baseURL+path, whoopclient.AutoParams{
		Start:     req.Start,
		End:       req.End,
		Count:     req.Count,
		PerPage:   whoopclient.MaxPageLimit,
		NextToken: req.NextToken,
	})
}

// Profile fetches the athlete's basic profile.
func (s *Service) Profile(ctx context.Context) (map[string]interface{}, error) {
	return s.client.Fetch(ctx, s.baseURL+"/user/profile/basic")
}

// Body fetches the athlete's body measurements.
func (s *Service) Body(ctx context.Context) (map[string]interface{}, error) {
	return s.client.Fetch(ctx, s.baseURL+"/user/measurement/body")
}

// Summary fetches the profile, body measurements and the most recent record
// of every collection concurrently. Failure of any fetch fails the whole
// summary; there is no partial-result policy.
func (s *Service) Summary(ctx context.Context) (map[string]interface{}, error) {
	var mu sync.Mutex
	summary := make(map[string]interface{})

	put := func(key string, value interface{}) {
		mu.Lock()
		summary[key] = value
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := s.Profile(ctx)
		if err != nil {
			return err
		}
		put("profile", profile)
		return nil
	})

	g.Go(func() error {
		body, err := s.Body(ctx)
		if err != nil {
			return err
		}
		put("body", body)
		return nil
	})

	for resource := range resourcePaths {
		resource := resource
		g.Go(func() error {
			page, err := s.List(ctx, resource, ListRequest{Count: 1})
			if err != nil {
				return err
			}

			var latest interface{}
			if len(page.Records) > 0 {
				latest = page.Records[0]
			}
			put("latest_"+resource, latest)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summary, nil
}
