// Package otlp implements the telemetry.otlp module. It installs a global
// OpenTelemetry tracer provider that batches spans to an OTLP/HTTP
// collector. Without this module tracing stays a no-op.
package otlp

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/relaychat/internal/core"
)

const defaultTracesPath = "/v1/traces"

func init() {
	core.RegisterModule(&Module{})
}

// Interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module is the telemetry.otlp module.
type Module struct {
	config   Config
	provider *sdktrace.TracerProvider
	previous trace.TracerProvider
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "telemetry.otlp",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("telemetry.otlp: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision builds the exporter and installs the tracer provider. It runs
// before any other namespace so every tracer resolves to it.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	if err := m.config.validate(); err != nil {
		return err
	}

	exporter, err := otlptracehttp.New(context.Background(), exporterOptions(m.config)...)
	if err != nil {
		return fmt.Errorf("telemetry.otlp: create exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", m.config.ServiceName))
	m.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(*m.config.SampleRatio))),
	)
	m.previous = otel.GetTracerProvider()
	otel.SetTracerProvider(m.provider)

	ctx.Logger.Info("otlp tracing enabled",
		"endpoint", m.config.Endpoint,
		"service", m.config.ServiceName,
		"sample_ratio", *m.config.SampleRatio)
	return nil
}

func exporterOptions(cfg Config) []otlptracehttp.Option {
	var opts []otlptracehttp.Option
	if strings.Contains(cfg.Endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		// A bare collector URL means the standard traces path.
		if u, err := url.Parse(cfg.Endpoint); err == nil && strings.Trim(u.Path, "/") == "" {
			opts = append(opts, otlptracehttp.WithURLPath(defaultTracesPath))
		}
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return opts
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Stop flushes pending spans and restores the previous global provider.
func (m *Module) Stop(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	err := m.provider.Shutdown(ctx)
	if m.previous != nil {
		otel.SetTracerProvider(m.previous)
	}
	m.provider = nil
	if err != nil {
		return fmt.Errorf("telemetry.otlp: shutdown: %w", err)
	}
	return nil
}
