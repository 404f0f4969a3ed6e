// Package handler contains the HTTP request handlers of the job board API.
//
// WHAT IS A HANDLER?
// In Go, an HTTP handler is anything that implements http.Handler. Most of
// ours are methods with the http.HandlerFunc signature, which chi accepts
// directly.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming request (path values, query string, JSON body)
//  2. Read the caller's identity from the context on protected routes
//  3. Call exactly one service method
//  4. Write the JSON response, or map the error with writeError
//
// Handlers hold no business rules. Ownership checks, validation and the
// duplicate-bid rule all live in the service package.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is the part of the store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	store  Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(store Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

// HandleRoot is the liveness banner.
//
// HTTP: GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello Job post server"))
}

// HandleHealth reports whether the store answers a ping within two seconds.
//
// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
