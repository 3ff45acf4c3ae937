package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logging middleware adds request logging, performance timing, panic recovery,
// request ID generation and a request-scoped logger in the context.
func Logging(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Generate a request ID if not already set
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
				r.Header.Set("X-Request-ID", requestID)
			}

			entry := logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			ctx = context.WithValue(ctx, loggerKey, entry)
			r = r.WithContext(ctx)

			// Create a response writer wrapper to capture response details
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			entry.WithFields(logrus.Fields{
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			}).Debug("Request started")

			defer func() {
				if rec := recover(); rec != nil {
					entry.WithField("panic", rec).Errorf("Panic serving request\n%s", debug.Stack())

					render.Status(r, http.StatusInternalServerError)
					render.JSON(ww, r, map[string]string{
						"error":      "Internal server error",
						"request_id": requestID,
					})
				}

				fields := logrus.Fields{
					"status":   ww.Status(),
					"bytes":    ww.BytesWritten(),
					"duration": time.Since(start).String(),
				}
				switch {
				case ww.Status() >= http.StatusInternalServerError:
					entry.WithFields(fields).Error("Request completed")
				default:
					entry.WithFields(fields).Info("Request completed")
				}
			}()

			// Add response headers
			w.Header().Set("X-Request-ID", requestID)

			// Process the request
			next.ServeHTTP(ww, r)
		})
	}
}
