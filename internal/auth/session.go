// auth/session.go
package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
)

var (
	store *sessions.CookieStore
)

// InitSessionStore initializes the session store used to carry the OAuth
// CSRF state across the authorization redirect.
func InitSessionStore(secret []byte) {
	store = sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600, // state is only valid for the pending login attempt
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// GetSession retrieves the session
func GetSession(r *http.Request) *sessions.Session {
	session, _ := store.Get(r, "whoop-auth-session")
	return session
}
