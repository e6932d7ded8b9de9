// Package gateway serves the chat UI and the /chat and /clear endpoints,
// plus health and Prometheus metrics for operators.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/flemzord/relaychat/internal/core"
	"github.com/flemzord/relaychat/internal/memory"
	"github.com/flemzord/relaychat/internal/provider"
	"github.com/flemzord/relaychat/internal/security"
	"github.com/flemzord/relaychat/internal/session"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// Gateway is the HTTP gateway module. It is a leaf module: it consumes the
// memory.kv and provider.inference services and nothing depends on it.
type Gateway struct {
	config    Config
	logger    *slog.Logger
	server    *http.Server
	metrics   *Metrics
	sessions  *session.Manager
	store     memory.KV
	inference provider.Provider
	addr      net.Addr
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return fmt.Errorf("gateway: decode config: %w", err)
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner. The store and inference services
// are registered by modules that load earlier.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.logger = ctx.Logger

	svc, ok := ctx.Service(memory.ServiceName)
	if !ok {
		return fmt.Errorf("gateway: no %s service registered, enable a memory module", memory.ServiceName)
	}
	store, ok := svc.(memory.KV)
	if !ok {
		return fmt.Errorf("gateway: service %s has type %T, want memory.KV", memory.ServiceName, svc)
	}

	svc, ok = ctx.Service(provider.ServiceName)
	if !ok {
		return fmt.Errorf("gateway: no %s service registered, enable a provider module", provider.ServiceName)
	}
	inference, ok := svc.(provider.Provider)
	if !ok {
		return fmt.Errorf("gateway: service %s has type %T, want provider.Provider", provider.ServiceName, svc)
	}

	if r, ok := ctx.Service(security.ServiceName); ok {
		if redactor, ok := r.(*security.Redactor); ok {
			redactor.AddLiteral(g.config.Ops.Auth.BearerToken)
			redactor.AddLiteral(g.config.Ops.Auth.BasicPass)
		}
	}

	g.setup(store, inference)
	return nil
}

// setup wires the session manager and metrics around store and inference.
func (g *Gateway) setup(store memory.KV, inference provider.Provider) {
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.metrics = NewMetrics()
	g.store = store
	g.inference = inference
	g.sessions = session.NewManager(store, g.metrics.instrument(inference))
	g.metrics.trackSessions(g.sessions.Len)
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	return g.config.validate()
}

// Start implements core.Starter. It binds the listener synchronously so a
// bad address fails startup, then serves in the background.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}
	g.addr = ln.Addr()

	go func() {
		g.logger.Info("gateway listening", "addr", g.addr.String(), "model", g.inference.ModelName())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}

// Addr returns the address the gateway listens on, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	return g.addr
}
