// Package workersai provides the provider.workersai module, which relays
// conversations to a Cloudflare Workers AI text generation model.
package workersai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

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

// Provider is a Workers AI inference backend.
type Provider struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (p *Provider) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "provider.workersai",
		New: func() core.Module { return &Provider{} },
	}
}

// Configure implements core.Configurable.
func (p *Provider) Configure(node *yaml.Node) error {
	if err := node.Decode(&p.config); err != nil {
		return fmt.Errorf("provider.workersai: decode config: %w", err)
	}
	p.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (p *Provider) Provision(ctx *core.AppContext) error {
	p.config.defaults()
	p.logger = ctx.Logger
	p.config.APIKey = provider.ResolveAPIKey(p.config.APIKey, p.config.APIKeyEnv, "CLOUDFLARE_API_TOKEN")
	p.config.AccountID = provider.ResolveAPIKey(p.config.AccountID, p.config.AccountIDEnv, "CLOUDFLARE_ACCOUNT_ID")

	p.client = &http.Client{}

	provider.Publish(ctx, p, p.config.APIKey)
	p.logger.Info("workers ai provider ready", "model", p.config.Model)
	return nil
}

// Validate implements core.Validator.
func (p *Provider) Validate() error {
	return p.config.validate()
}

// ModelName implements provider.Provider.
func (p *Provider) ModelName() string {
	return p.config.Model
}

// Complete implements provider.Provider.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	out, err := p.run(ctx, runRequest{
		Messages:  req.Messages,
		MaxTokens: p.config.MaxTokens,
	})
	if err != nil {
		return provider.CompletionResponse{}, err
	}
	if out.Result.Response == nil {
		return provider.CompletionResponse{}, provider.ErrEmptyResponse
	}

	return provider.CompletionResponse{
		Content: *out.Result.Response,
		Usage: provider.TokenUsage{
			PromptTokens:     out.Result.Usage.PromptTokens,
			CompletionTokens: out.Result.Usage.CompletionTokens,
			TotalTokens:      out.Result.Usage.TotalTokens,
		},
	}, nil
}

// HealthCheck runs a 1-token generation against the configured model.
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.run(ctx, runRequest{
		Messages:  []provider.Message{provider.UserMessage("ping")},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("workers ai health check: %w", err)
	}
	return nil
}
