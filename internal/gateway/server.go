package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(g.logger, g.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/", handleIndex)
	r.Post("/chat", g.handleChat())
	r.Post("/clear", g.handleClear())

	if g.config.opsEnabled() {
		r.Group(func(r chi.Router) {
			if g.config.Ops.Auth.IsConfigured() {
				r.Use(authMiddleware(g.config.Ops.Auth, g.logger))
			}
			r.Get("/health", g.handleHealth())
			r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g.metrics.registry, promhttp.HandlerOpts{}))
		})
	}

	// Unknown paths and known paths with the wrong method look the same.
	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)

	return r
}
