// Package ollama implements the provider.ollama module backed by a local
// Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/relaychat/internal/core"
	"github.com/flemzord/relaychat/internal/provider"
)

func init() {
	core.RegisterModule(&Provider{})
}

// Interface guards.
var (
	_ core.Configurable      = (*Provider)(nil)
	_ core.Provisioner       = (*Provider)(nil)
	_ core.Validator         = (*Provider)(nil)
	_ provider.Provider      = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
)

// Provider is the provider.ollama module.
type Provider struct {
	config Config
	client *api.Client
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (p *Provider) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "provider.ollama",
		New: func() core.Module { return &Provider{} },
	}
}

// Configure implements core.Configurable.
func (p *Provider) Configure(node *yaml.Node) error {
	if err := node.Decode(&p.config); err != nil {
		return fmt.Errorf("provider.ollama: decode config: %w", err)
	}
	p.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (p *Provider) Provision(ctx *core.AppContext) error {
	p.config.defaults()
	p.logger = ctx.Logger

	client, err := newClient(p.config.BaseURL)
	if err != nil {
		return err
	}
	p.client = client

	provider.Publish(ctx, p)
	p.logger.Info("ollama provider ready", "model", p.config.Model, "base_url", p.config.BaseURL)
	return nil
}

func newClient(baseURL string) (*api.Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("provider.ollama: invalid base_url: %w", err)
	}
	return api.NewClient(parsed, http.DefaultClient), nil
}

// Validate implements core.Validator.
func (p *Provider) Validate() error {
	return p.config.validate()
}

// ModelName implements provider.Provider.
func (p *Provider) ModelName() string {
	return p.config.Model
}

// Complete sends a non-streaming chat request.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model:    p.config.Model,
		Messages: toAPIMessages(req.Messages),
		Stream:   &stream,
	}
	if p.config.MaxTokens > 0 {
		chatReq.Options = map[string]any{"num_predict": p.config.MaxTokens}
	}

	var (
		content  strings.Builder
		last     api.ChatResponse
		received bool
	)
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		last = resp
		received = true
		return nil
	})
	if err != nil {
		return provider.CompletionResponse{}, mapError(ctx, err)
	}
	if !received {
		return provider.CompletionResponse{}, provider.ErrEmptyResponse
	}

	return provider.CompletionResponse{
		Content: content.String(),
		Usage: provider.TokenUsage{
			PromptTokens:     last.PromptEvalCount,
			CompletionTokens: last.EvalCount,
			TotalTokens:      last.PromptEvalCount + last.EvalCount,
		},
	}, nil
}

// HealthCheck lists local models to confirm the server is reachable.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.List(ctx); err != nil {
		return mapError(ctx, err)
	}
	return nil
}

func toAPIMessages(msgs []provider.Message) []api.Message {
	res := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, api.Message{Role: string(m.Role), Content: m.Content})
	}
	return res
}

// mapError classifies Ollama client errors. A missing model is reported by
// Ollama as a 404 and maps to a plain error.
func mapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.ErrorMessage
		if msg == "" {
			msg = statusErr.Status
		}
		return provider.StatusError(statusErr.StatusCode, []byte(msg))
	}
	return fmt.Errorf("%w: ollama: %w", provider.ErrProviderDown, err)
}
