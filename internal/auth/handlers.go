// auth/handlers.go
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

// Handler provides HTTP handlers for the WHOOP authorization flow
type Handler struct {
	service *Service
	creds   *CredentialStore
}

// NewHandler creates a new auth handler
func NewHandler(service *Service, creds *CredentialStore) *Handler {
	return &Handler{
		service: service,
		creds:   creds,
	}
}

// generateState creates a secure random state for OAuth
func (h *Handler) generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConnectHandler initiates the WHOOP authorization flow
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	state, err := h.generateState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}

	// Save state in session for verification on callback
	session := GetSession(r)
	session.Values["oauth_state"] = state
	session.Values["oauth_state_expiry"] = time.Now().Add(10 * time.Minute).Unix()
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	http.Redirect(w, r, h.service.AuthorizationURL(state), http.StatusFound)
}

// CallbackHandler handles the OAuth callback from WHOOP
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")

	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "invalid callback parameters")
		return
	}

	// A state mismatch means a possible CSRF or a retried navigation; the
	// pending attempt is discarded either way.
	session := GetSession(r)
	savedState, ok := session.Values["oauth_state"].(string)
	if !ok || savedState != state {
		writeError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}

	expiry, ok := session.Values["oauth_state_expiry"].(int64)
	if !ok || time.Now().Unix() > expiry {
		writeError(w, http.StatusBadRequest, "state parameter expired")
		return
	}

	delete(session.Values, "oauth_state")
	delete(session.Values, "oauth_state_expiry")
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	token, err := h.service.ExchangeCode(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to exchange code for token: "+err.Error())
		return
	}

	h.creds.Set(r.Context(), token)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "connected",
		"expires_at": token.ExpiresAt,
	})
}

// StatusHandler returns the connection status
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	token := h.creds.Get(r.Context())
	if token == nil || token.AccessToken == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"connected": false,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected":  true,
		"expires_at": token.ExpiresAt,
	})
}

// DisconnectHandler removes the stored token set
func (h *Handler) DisconnectHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.creds.Delete(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to disconnect: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "disconnected",
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
