// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"github.com/fitproxy/whoopserver/internal/auth"
	"github.com/fitproxy/whoopserver/internal/records"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	router *mux.Router,
	authHandler *auth.Handler,
	recordsHandler *records.Handler,
) {
	// Every request gets its own credential scope.
	router.Use(auth.ScopeMiddleware)

	RegisterAuthRoutes(router, authHandler)

	router.HandleFunc("/", recordsHandler.HomeHandler).Methods("GET")
	router.HandleFunc("/list/{resource}", recordsHandler.ListHandler).Methods("GET")
	router.HandleFunc("/profile", recordsHandler.ProfileHandler).Methods("GET")
	router.HandleFunc("/body", recordsHandler.BodyHandler).Methods("GET")
	router.HandleFunc("/summary", recordsHandler.SummaryHandler).Methods("GET")
}
