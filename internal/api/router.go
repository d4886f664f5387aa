package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)

		// Device endpoints
		r.Get("/devices", s.handleListDevices)
		r.Get("/keyboard", s.handleGetKeyboard)

		// Permission endpoints. Device names are OS paths and contain
		// slashes, so the lookup route is a catch-all rather than a
		// single URL parameter.
		r.Route("/permissions", func(r chi.Router) {
			r.Post("/request", s.handlePermissionRequest)
			r.Get("/*", s.handleGetPermission)
		})

		// WebSocket event stream
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"devices": s.registry.DeviceCount(),
	})
}
