package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets browser storefronts on the configured origins call the API and
// read the rotated cart session header.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", CartSessionHeader, "Idempotency-Key", requestIDHeader},
		ExposedHeaders:   []string{CartSessionHeader, requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
