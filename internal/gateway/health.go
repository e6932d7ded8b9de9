package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/flemzord/relaychat/internal/provider"
)

const healthCheckTimeout = 5 * time.Second

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status         string `json:"status"` // "ok" or "degraded"
	Sessions       int    `json:"sessions"`
	StoredSessions int    `json:"stored_sessions"`
	Model          string `json:"model"`
	Error          string `json:"error,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// sessions counts sessions touched since startup; stored_sessions counts
// session namespaces that still hold history in the store.
// Returns 503 when the store cannot be read or the provider health check fails.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:   "ok",
			Sessions: g.sessions.Len(),
			Model:    g.inference.ModelName(),
		}

		stored, err := g.store.Namespaces(r.Context())
		if err != nil {
			resp.Status = "degraded"
			resp.Error = "storage"
			g.logger.Warn("count stored sessions", "error", err)
		}
		resp.StoredSessions = stored

		if hc, ok := g.inference.(provider.HealthChecker); ok && resp.Status == "ok" {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := hc.HealthCheck(ctx); err != nil {
				resp.Status = "degraded"
				resp.Error = provider.Kind(err)
				g.logger.Warn("provider health check failed", "error", err)
			}
		}

		status := http.StatusOK
		if resp.Status == "degraded" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
