package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/relaychat/internal/core"
	"github.com/flemzord/relaychat/internal/memory"
	"github.com/flemzord/relaychat/internal/provider"
	"github.com/flemzord/relaychat/internal/provider/providertest"
)

func TestGateway_ModuleInfo(t *testing.T) {
	t.Parallel()

	info := (&Gateway{}).ModuleInfo()
	if info.ID != "gateway.http" {
		t.Errorf("ID = %q, want %q", info.ID, "gateway.http")
	}
	if _, ok := info.New().(*Gateway); !ok {
		t.Error("New() should return *Gateway")
	}
}

func TestGateway_ConfigureDefaults(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	if err := g.Configure(mustYAMLNode(t, "{}")); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	c := g.config
	if c.Bind != "127.0.0.1:8787" {
		t.Errorf("Bind = %q, want default", c.Bind)
	}
	if c.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", c.ReadTimeout)
	}
	if c.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0 (no deadline on inference)", c.WriteTimeout)
	}
	if c.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", c.ShutdownTimeout)
	}
	if c.MaxBodyBytes != defaultMaxBodyBytes {
		t.Errorf("MaxBodyBytes = %d", c.MaxBodyBytes)
	}
	if c.DefaultSession != "default" {
		t.Errorf("DefaultSession = %q", c.DefaultSession)
	}
	if !c.opsEnabled() {
		t.Error("ops should be enabled by default")
	}
}

func TestGateway_ConfigureCustom(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	node := mustYAMLNode(t, `
bind: "0.0.0.0:9090"
read_timeout: 5s
write_timeout: 2m
shutdown_timeout: 10s
max_body_bytes: 4096
default_session: lobby
ops:
  enabled: false
  auth:
    bearer_token: "my-token"
`)
	if err := g.Configure(node); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	c := g.config
	if c.Bind != "0.0.0.0:9090" || c.ReadTimeout != 5*time.Second || c.WriteTimeout != 2*time.Minute {
		t.Errorf("config = %+v", c)
	}
	if c.ShutdownTimeout != 10*time.Second || c.MaxBodyBytes != 4096 || c.DefaultSession != "lobby" {
		t.Errorf("config = %+v", c)
	}
	if c.opsEnabled() || c.Ops.Auth.BearerToken != "my-token" {
		t.Errorf("ops = %+v", c.Ops)
	}
}

func TestGateway_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     string
		wantErr bool
	}{
		{"defaults", "{}", false},
		{"bad bind", `bind: "not an address"`, true},
		{"negative write timeout", `write_timeout: -1s`, true},
		{"half basic auth", "ops:\n  auth:\n    basic_user: admin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := &Gateway{}
			if err := g.Configure(mustYAMLNode(t, tt.cfg)); err != nil {
				t.Fatalf("Configure: %v", err)
			}
			if err := g.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGateway_ProvisionResolvesServices(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("missing store", func(t *testing.T) {
		t.Parallel()
		ctx := core.NewAppContext(logger, t.TempDir())
		ctx.RegisterService(provider.ServiceName, providertest.Reply("x"))
		if err := (&Gateway{}).Provision(ctx); err == nil || !strings.Contains(err.Error(), memory.ServiceName) {
			t.Errorf("Provision err = %v", err)
		}
	})

	t.Run("missing provider", func(t *testing.T) {
		t.Parallel()
		ctx := core.NewAppContext(logger, t.TempDir())
		ctx.RegisterService(memory.ServiceName, memory.NewInMemoryKV())
		if err := (&Gateway{}).Provision(ctx); err == nil || !strings.Contains(err.Error(), provider.ServiceName) {
			t.Errorf("Provision err = %v", err)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()
		ctx := core.NewAppContext(logger, t.TempDir())
		ctx.RegisterService(memory.ServiceName, "not a store")
		ctx.RegisterService(provider.ServiceName, providertest.Reply("x"))
		if err := (&Gateway{}).Provision(ctx); err == nil {
			t.Error("expected type error")
		}
	})

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		ctx := core.NewAppContext(logger, t.TempDir())
		ctx.RegisterService(memory.ServiceName, memory.NewInMemoryKV())
		ctx.RegisterService(provider.ServiceName, providertest.Reply("x"))
		g := &Gateway{}
		if err := g.Provision(ctx); err != nil {
			t.Fatalf("Provision: %v", err)
		}
		if g.sessions == nil || g.metrics == nil {
			t.Error("session manager and metrics should be wired")
		}
	})
}

func TestGateway_StartServeStop(t *testing.T) {
	t.Parallel()

	ctx := core.NewAppContext(slog.New(slog.NewTextHandler(io.Discard, nil)), t.TempDir())
	ctx.RegisterService(memory.ServiceName, memory.NewInMemoryKV())
	ctx.RegisterService(provider.ServiceName, providertest.Reply("hello"))

	g := &Gateway{}
	if err := g.Configure(mustYAMLNode(t, `bind: "127.0.0.1:0"`)); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := g.Provision(ctx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = g.Stop(context.Background()) })

	url := "http://" + g.Addr().String() + "/chat"
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(`{"message":"hi"}`))
	if err != nil {
		t.Fatalf("POST /chat: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Response string             `json:"response"`
		History  []provider.Message `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Response != "hello" || len(body.History) != 2 {
		t.Errorf("body = %+v", body)
	}

	if err := g.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestGateway_StopWithoutStart(t *testing.T) {
	t.Parallel()

	if err := (&Gateway{}).Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
