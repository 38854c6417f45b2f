// records/handlers.go
package records

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fitproxy/whoopserver/pkg/whoopclient"
)

// defaultListCount is how many records a list request returns when the caller
// does not pass a limit.
const defaultListCount = 10

// Handler provides HTTP handlers for the simplified read endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new records handler
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// listResponse is the downstream page envelope. NextToken is null once the
// collection is exhausted.
type listResponse struct {
	Records   []map[string]interface{} `json:"records"`
	NextToken *string                  `json:"nextToken"`
}

// ListHandler serves GET /list/{resource}
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	resource := mux.Vars(r)["resource"]
	if !KnownResource(resource) {
		writeError(w, http.StatusBadRequest, "unknown resource: "+resource)
		return
	}

	query := r.URL.Query()
	start := query.Get("start")
	end := query.Get("end")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start and end query parameters are required")
		return
	}

	count := defaultListCount
	switch limit := query.Get("limit"); limit {
	case "":
	case "all":
		count = whoopclient.CountAll
	default:
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer or \"all\"")
			return
		}
		count = n
	}

	page, err := h.service.List(r.Context(), resource, ListRequest{
		Start:     start,
		End:       end,
		Count:     count,
		NextToken: query.Get("nextToken"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := listResponse{Records: page.Records}
	if page.NextToken != "" {
		resp.NextToken = &page.NextToken
	}

	writeJSON(w, http.StatusOK, resp)
}

// ProfileHandler serves GET /profile
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// BodyHandler serves GET /body
func (h *Handler) BodyHandler(w http.ResponseWriter, r *http.Request) {
	body, err := h.service.Body(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// SummaryHandler serves GET /summary
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HomeHandler serves GET / with a short route listing
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "whoopserver",
		"routes": []string{
			"GET /auth/connect",
			"GET /auth/status",
			"POST /auth/disconnect",
			"GET /list/{cycle|recovery|sleep|workout}?start=&end=&limit=&nextToken=",
			"GET /profile",
			"GET /body",
			"GET /summary",
		},
	})
}

// writeJSON renders a JSON response body
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders the uniform error body
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
