package restapi

import (
	"net/http"

	"github.com/go-chi/cors"
)

// NewCORSMiddleware lets the complaint form call the API from the given
// origins. With no origins configured cross-origin requests are refused.
func NewCORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader, "X-Api-Key"},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAge:         300,
	}
	if len(allowedOrigins) == 0 {
		// cors treats an empty list as "*".
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	return cors.Handler(opts)
}
