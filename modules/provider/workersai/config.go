package workersai

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	defaultModel   = "@cf/meta/llama-3.3-70b-instruct-fp8-fast"
	defaultBaseURL = "https://api.cloudflare.com/client/v4"
)

// Config holds the configuration for the Workers AI provider.
type Config struct {
	AccountID    string `yaml:"account_id"`
	AccountIDEnv string `yaml:"account_id_env"`
	APIKey       string `yaml:"api_key"`
	APIKeyEnv    string `yaml:"api_key_env"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	MaxTokens    int    `yaml:"max_tokens"`
}

// defaults sets default values for unset fields.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// validate returns an error if required fields are missing.
func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("provider.workersai: base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("provider.workersai: base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.AccountID == "" {
		return errors.New("provider.workersai: account_id is required (set account_id, account_id_env or CLOUDFLARE_ACCOUNT_ID)")
	}
	if c.APIKey == "" {
		return errors.New("provider.workersai: api key is required (set api_key, api_key_env or CLOUDFLARE_API_TOKEN)")
	}
	if c.MaxTokens < 0 {
		return errors.New("provider.workersai: max_tokens must not be negative")
	}
	return nil
}
