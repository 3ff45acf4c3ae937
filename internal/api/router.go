package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/NahomAnteneh/repo-browser/internal/api/handlers"
	"github.com/NahomAnteneh/repo-browser/internal/api/middleware"
	"github.com/NahomAnteneh/repo-browser/internal/config"
)

// SetupRouter configures the HTTP router for the repository browser
func SetupRouter(cfg *config.Config, pages handlers.PageResolver, renderer handlers.PageRenderer, db handlers.Pinger, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger)) // also recovers panics

	// CORS configuration
	cors := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300, // Maximum cache age for preflight options request
	})
	r.Use(cors.Handler)

	r.Get("/healthz", handlers.Health(db))

	// Repository pages: root, then any directory or file path beneath it
	page := handlers.GetRepositoryPage(pages, renderer)
	r.Get("/{account}/{repository}", page)
	r.Get("/{account}/{repository}/*", page)

	return r
}
