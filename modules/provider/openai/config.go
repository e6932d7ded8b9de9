package openai

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const defaultModel = "gpt-4o-mini"

// Config holds the configuration for the OpenAI provider module.
type Config struct {
	APIKey    string `yaml:"api_key"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
}

// defaults fills zero-valued fields with sensible defaults. An empty
// base_url keeps the client library's default endpoint.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

func (c *Config) validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("provider.openai: base_url must be an http(s) URL, got %q", c.BaseURL)
		}
	}
	if c.MaxTokens < 0 {
		return errors.New("provider.openai: max_tokens must not be negative")
	}
	return nil
}
