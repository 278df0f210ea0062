package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the dashboard origins to call the REST API.
// A single "*" entry allows any origin. Requests carry no credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler
}
