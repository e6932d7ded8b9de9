// Package openai implements the provider.openai module for any API that
// speaks the OpenAI chat completions protocol (OpenAI, Mistral, Groq,
// vLLM, LiteLLM and friends) through base_url.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	openaiapi "github.com/sashabaranov/go-openai"
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

// Provider is the provider.openai module.
type Provider struct {
	config Config
	api    *openaiapi.Client
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (p *Provider) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "provider.openai",
		New: func() core.Module { return &Provider{} },
	}
}

// Configure implements core.Configurable.
func (p *Provider) Configure(node *yaml.Node) error {
	if err := node.Decode(&p.config); err != nil {
		return fmt.Errorf("provider.openai: decode config: %w", err)
	}
	p.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (p *Provider) Provision(ctx *core.AppContext) error {
	p.config.defaults()
	p.logger = ctx.Logger

	token := provider.ResolveAPIKey(p.config.APIKey, p.config.APIKeyEnv, "OPENAI_API_KEY")
	// nil keeps the library's default client, which has no timeout.
	p.api = newClient(token, p.config.BaseURL, nil)

	provider.Publish(ctx, p, token)
	p.logger.Info("openai provider ready", "model", p.config.Model, "base_url", p.config.BaseURL)
	return nil
}

func newClient(token, baseURL string, httpClient *http.Client) *openaiapi.Client {
	cfg := openaiapi.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return openaiapi.NewClientWithConfig(cfg)
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
	resp, err := p.api.CreateChatCompletion(ctx, openaiapi.ChatCompletionRequest{
		Model:     p.config.Model,
		Messages:  toAPIMessages(req.Messages),
		MaxTokens: p.config.MaxTokens,
	})
	if err != nil {
		return provider.CompletionResponse{}, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return provider.CompletionResponse{}, provider.ErrEmptyResponse
	}

	return provider.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: provider.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// HealthCheck lists the available models, which checks both reachability
// and credentials without spending tokens.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.api.ListModels(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

func toAPIMessages(msgs []provider.Message) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, openaiapi.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return res
}
