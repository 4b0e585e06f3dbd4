package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"returns-backend/internal/config"
)

// NewCORS builds the CORS handler from the configured origins. The
// credentials flag stays on because the frontend sends the bearer token
// from a different origin in development.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler
}
