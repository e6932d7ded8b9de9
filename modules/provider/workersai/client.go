package workersai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/flemzord/relaychat/internal/provider"
)

// Workers AI wire types.

type runRequest struct {
	Messages  []provider.Message `json:"messages"`
	MaxTokens int                `json:"max_tokens,omitempty"`
}

type runResponse struct {
	Result struct {
		Response *string  `json:"response"`
		Usage    runUsage `json:"usage"`
	} `json:"result"`
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
}

type runUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// endpoint returns the model run URL. Model names contain slashes and are
// kept as path segments.
func (p *Provider) endpoint() string {
	return fmt.Sprintf("%s/accounts/%s/ai/run/%s",
		p.config.BaseURL, url.PathEscape(p.config.AccountID), strings.TrimPrefix(p.config.Model, "/"))
}

// run posts body to the model and decodes the envelope.
func (p *Provider) run(ctx context.Context, body runRequest) (runResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return runResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return runResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		// Caller cancellation is not a provider failure.
		if ctx.Err() != nil {
			return runResponse{}, ctx.Err()
		}
		return runResponse{}, fmt.Errorf("%w: %w", provider.ErrProviderDown, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return runResponse{}, provider.StatusError(resp.StatusCode, raw)
	}

	var out runResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return runResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if !out.Success && len(out.Errors) > 0 {
		return runResponse{}, fmt.Errorf("workers ai error %d: %s", out.Errors[0].Code, out.Errors[0].Message)
	}
	return out, nil
}
