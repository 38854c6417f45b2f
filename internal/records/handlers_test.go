package records_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitproxy/whoopserver/internal/auth"
	"github.com/fitproxy/whoopserver/internal/records"
	"github.com/fitproxy/whoopserver/pkg/whoopclient"
	"github.com/fitproxy/whoopserver/routes"
)

// newTestServer wires the real router, credential store and whoop client
// against the given mock upstream, pre-authorized with a stored token.
func newTestServer(t *testing.T, upstream *httptest.Server) *httptest.Server {
	t.Helper()

	auth.InitSessionStore([]byte("test-session-secret"))

	creds := auth.NewCredentialStore(auth.NewFallbackTokenStore(nil, nil))
	creds.Set(auth.WithScope(httptest.NewRequest(http.MethodGet, "/", nil).Context()),
		&auth.OAuthToken{AccessToken: "valid-token", RefreshToken: "rt"})

	service := auth.NewService(auth.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     upstream.URL + "/oauth/token",
	})

	client := whoopclient.NewClient(creds, service,
		whoopclient.WithRetryPolicy(whoopclient.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}))

	recordsService := records.NewService(client, upstream.URL)

	router := mux.NewRouter()
	routes.SetupRoutes(router, auth.NewHandler(service, creds), records.NewHandler(recordsService))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// recoveryRecord builds an upstream recovery record carrying both
// allow-listed and droppable fields.
func recoveryRecord(cycleID int) map[string]interface{} {
	return map[string]interface{}{
		"cycle_id":    cycleID,
		"sleep_id":    cycleID + 1000,
		"user_id":     999,
		"created_at":  "2024-01-10T08:00:00Z",
		"updated_at":  "2024-01-10T09:00:00Z",
		"score_state": "SCORED",
		"score": map[string]interface{}{
			"recovery_score":     66.0,
			"resting_heart_rate": 52.0,
			"hrv_rmssd_milli":    48.5,
		},
		"raw_telemetry": "should be trimmed away",
	}
}

func writeUpstreamPage(w http.ResponseWriter, records []map[string]interface{}, nextToken string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"records":    records,
		"next_token": nextToken,
	})
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestListRecovery_EndToEnd(t *testing.T) {
	var pageRequests int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recovery", r.URL.Path)
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-01-01T00:00:00.000Z", r.URL.Query().Get("start"))
		assert.Equal(t, "2024-01-31T23:59:59.999Z", r.URL.Query().Get("end"))

		// Ten records delivered across two pages, then an absent cursor.
		switch r.URL.Query().Get("nextToken") {
		case "":
			atomic.AddInt32(&pageRequests, 1)
			page := make([]map[string]interface{}, 0, 5)
			for i := 0; i < 5; i++ {
				page = append(page, recoveryRecord(i))
			}
			writeUpstreamPage(w, page, "page2")
		case "page2":
			atomic.AddInt32(&pageRequests, 1)
			page := make([]map[string]interface{}, 0, 5)
			for i := 5; i < 10; i++ {
				page = append(page, recoveryRecord(i))
			}
			writeUpstreamPage(w, page, "")
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("nextToken"))
		}
	}))
	defer upstream.Close()

	server := newTestServer(t, upstream)

	var body struct {
		Records   []map[string]interface{} `json:"records"`
		NextToken *string                  `json:"nextToken"`
	}
	resp := getJSON(t, server.URL+"/list/recovery?start=2024-01&end=2024-01&limit=10", &body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body.Records, 10)
	assert.Nil(t, body.NextToken)
	assert.Equal(t, int32(2), atomic.LoadInt32(&pageRequests))

	for _, record := range body.Records {
		assert.NotContains(t, record, "raw_telemetry")
		assert.Contains(t, record, "cycle_id")
		assert.Contains(t, record, "score")
	}
}

func TestList_MissingDateBounds(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("the upstream must not be called on validation failures")
	}))
	defer upstream.Close()

	server := newTestServer(t, upstream)

	for _, path := range []string{
		"/list/recovery",
		"/list/recovery?start=2024-01",
		"/list/recovery?end=2024-01",
	} {
		var body map[string]string
		resp := getJSON(t, server.URL+path, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.NotEmpty(t, body["error"], path)
	}
}

func TestList_UnknownResource(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	server := newTestServer(t, upstream)

	var body map[string]string
	resp := getJSON(t, server.URL+"/list/heartbeats?start=2024-01&end=2024-01", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestList_BadLimit(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	server := newTestServer(t, upstream)

	var body map[string]string
	resp := getJSON(t, server.URL+"/list/recovery?start=2024-01&end=2024-01&limit=lots", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestList_UpstreamFailureRendersError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	server := newTestServer(t, upstream)

	var body map[string]string
	resp := getJSON(t, server.URL+"/list/recovery?start=2024-01&end=2024-01", &body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestList_InvalidDateRendersError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("the upstream must not be called for unparseable dates")
	}))
	defer upstream.Close()

	server := newTestServer(t, upstream)

	var body map[string]string
	resp := getJSON(t, server.URL+"/list/recovery?start=banana&end=2024-01", &body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["error"], "invalid date")
}

func TestProfileAndBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user/profile/basic":
			_, _ = w.Write([]byte(`{"user_id": 999, "first_name": "Ada"}`))
		case "/user/measurement/body":
			_, _ = w.Write([]byte(`{"height_meter": 1.7, "weight_kilogram": 60.2}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer upstream.Close()

	server := newTestServer(t, upstream)

	var profile map[string]interface{}
	resp := getJSON(t, server.URL+"/profile", &profile)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ada", profile["first_name"])

	var measurement map[string]interface{}
	resp = getJSON(t, server.URL+"/body", &measurement)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.7, measurement["height_meter"])
}

func TestSummary_JoinsConcurrentFetches(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user/profile/basic":
			_, _ = w.Write([]byte(`{"user_id": 999}`))
		case "/user/measurement/body":
			_, _ = w.Write([]byte(`{"height_meter": 1.7}`))
		case "/cycle", "/recovery", "/activity/sleep", "/activity/workout":
			writeUpstreamPage(w, []map[string]interface{}{{"id": 1, "user_id": 999}}, "")
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer upstream.Close()

	server := newTestServer(t, upstream)

	var summary map[string]interface{}
	resp := getJSON(t, server.URL+"/summary", &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, key := range []string{"profile", "body", "latest_cycle", "latest_recovery", "latest_sleep", "latest_workout"} {
		assert.Contains(t, summary, key)
	}
}

func TestSummary_AnyFailureFailsTheJoin(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/recovery" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.URL.Path {
		case "/user/profile/basic", "/user/measurement/body":
			_, _ = w.Write([]byte(`{}`))
		default:
			writeUpstreamPage(w, nil, "")
		}
	}))
	defer upstream.Close()

	server := newTestServer(t, upstream)

	var body map[string]string
	resp := getJSON(t, server.URL+"/summary", &body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestList_NotConnected(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	auth.InitSessionStore([]byte("test-session-secret"))
	creds := auth.NewCredentialStore(auth.NewFallbackTokenStore(nil, nil))
	service := auth.NewService(auth.OAuthConfig{ClientID: "id", ClientSecret: "secret"})
	client := whoopclient.NewClient(creds, service)

	router := mux.NewRouter()
	routes.SetupRoutes(router,
		auth.NewHandler(service, creds),
		records.NewHandler(records.NewService(client, upstream.URL)))

	server := httptest.NewServer(router)
	defer server.Close()

	var body map[string]string
	resp := getJSON(t, server.URL+"/list/recovery?start=2024-01&end=2024-01", &body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["error"], "not connected")
}
