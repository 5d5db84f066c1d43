package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

const (
	RequestIDHeader = "X-Request-ID"
	// DraftIDHeader carries the draft id of guests without a session
	DraftIDHeader = "X-Draft-ID"
)

// CORSHandler returns a configured CORS handler for Chi. Guest clients read
// the draft id from responses, so it is exposed. Credentials are only
// allowed for an explicit origin list.
func CORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader, DraftIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, DraftIDHeader},
		AllowCredentials: !slices.Contains(allowedOrigins, "*"),
		MaxAge:           300, // 5 minutes
	})
}
