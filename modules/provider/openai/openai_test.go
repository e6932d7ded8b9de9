package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openaiapi "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/relaychat/internal/core"
	"github.com/flemzord/relaychat/internal/provider"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL + "/v1", MaxTokens: 200}
	cfg.defaults()
	return &Provider{config: cfg, api: newClient("sk-test", cfg.BaseURL, srv.Client())}
}

func TestComplete_Success(t *testing.T) {
	t.Parallel()

	var got openaiapi.ChatCompletionRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Bonjour"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 8, "completion_tokens": 2, "total_tokens": 10}
		}`))
	})

	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{
			provider.UserMessage("hi"),
			provider.AssistantMessage("hello"),
			provider.UserMessage("in french"),
		},
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if resp.Content != "Bonjour" || resp.Usage.TotalTokens != 10 {
		t.Errorf("resp = %+v", resp)
	}
	if got.Model != defaultModel || got.MaxTokens != 200 {
		t.Errorf("request model/max_tokens = %q/%d", got.Model, got.MaxTokens)
	}
	if len(got.Messages) != 3 || got.Messages[1].Role != openaiapi.ChatMessageRoleAssistant {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})
	_, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	if !errors.Is(err, provider.ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestComplete_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limit", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`, provider.ErrRateLimit},
		{"auth", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key","type":"invalid_request_error","code":"invalid_api_key"}}`, provider.ErrAuthentication},
		{"context length", http.StatusBadRequest, `{"error":{"message":"too long","type":"invalid_request_error","code":"context_length_exceeded"}}`, provider.ErrContextLength},
		{"server", http.StatusBadGateway, `{"error":{"message":"upstream failed","type":"server_error"}}`, provider.ErrProviderDown},
		{"non-json server", http.StatusServiceUnavailable, `<html>down</html>`, provider.ErrProviderDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := p.Complete(context.Background(), provider.CompletionRequest{
				Messages: []provider.Message{provider.UserMessage("hi")},
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("path = %q, want /v1/models", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini","object":"model"}]}`))
	})
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}
}

func TestModule_Lifecycle(t *testing.T) {
	t.Setenv("RELAYCHAT_OPENAI_TEST", "sk-from-env")

	var node yaml.Node
	if err := yaml.Unmarshal([]byte("api_key_env: RELAYCHAT_OPENAI_TEST\nbase_url: https://api.groq.com/openai/v1/\nmodel: llama-3.3-70b-versatile\n"), &node); err != nil {
		t.Fatal(err)
	}

	p := &Provider{}
	if err := p.Configure(node.Content[0]); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	ctx := core.NewAppContext(nil, t.TempDir())
	if err := p.Provision(ctx); err != nil {
		t.Fatalf("Provision() error: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if p.config.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("base url = %q", p.config.BaseURL)
	}
	if _, ok := ctx.Service(provider.ServiceName); !ok {
		t.Error("inference service not registered")
	}
}

func TestComplete_SlowModelDefaultConfig(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"took a while"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(srv.Close)

	var node yaml.Node
	if err := yaml.Unmarshal([]byte("api_key: sk-test\nbase_url: "+srv.URL+"/v1\n"), &node); err != nil {
		t.Fatal(err)
	}
	p := &Provider{}
	if err := p.Configure(node.Content[0]); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if err := p.Provision(core.NewAppContext(nil, t.TempDir())); err != nil {
		t.Fatalf("Provision() error: %v", err)
	}

	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if resp.Content != "took a while" {
		t.Errorf("content = %q", resp.Content)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		{BaseURL: "not a url"},
		{MaxTokens: -5},
	} {
		if err := cfg.validate(); err == nil {
			t.Errorf("validate(%+v) = nil, want error", cfg)
		}
	}
}
