package ollama

import (
	"errors"
	"fmt"
	"net/url"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.1:latest"
)

// Config holds the configuration for the Ollama provider. Ollama runs
// locally and needs no API key.
type Config struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("provider.ollama: invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("provider.ollama: base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.MaxTokens < 0 {
		return errors.New("provider.ollama: max_tokens must not be negative")
	}
	return nil
}
