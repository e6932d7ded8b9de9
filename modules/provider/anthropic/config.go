package anthropic

import (
	"errors"
	"fmt"
	"net/url"
)

// defaultModel is the model used when none is specified.
// Pinned to a dated release for reproducibility.
const defaultModel = "claude-sonnet-4-5-20250929"

// defaultMaxTokens caps a reply when max_tokens is not set. The Messages
// API requires an explicit limit.
const defaultMaxTokens = 4096

// Config holds the YAML-decoded configuration for the Anthropic provider.
type Config struct {
	APIKey    string `yaml:"api_key"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
}

// defaults fills in zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
}

func (c *Config) validate() error {
	if c.Model == "" {
		return errors.New("provider.anthropic: model must not be empty")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("provider.anthropic: max_tokens must not be negative, got %d", c.MaxTokens)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("provider.anthropic: base_url must be an http(s) URL, got %q", c.BaseURL)
		}
	}
	return nil
}
