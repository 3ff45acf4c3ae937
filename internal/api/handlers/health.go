package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"github.com/NahomAnteneh/repo-browser/internal/api/middleware"
)

// Pinger reports whether a backing store is reachable; *sql.DB satisfies it
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /healthz. A nil pinger always reports ok.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				middleware.LoggerFromContext(r.Context()).WithError(err).Warn("Health check failed")
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, HealthResponse{Status: "unavailable"})
				return
			}
		}
		render.JSON(w, r, HealthResponse{Status: "ok"})
	}
}
