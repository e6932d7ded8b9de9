package gateway

import (
	"fmt"
	"net"
	"time"

	"github.com/flemzord/relaychat/internal/session"
)

const defaultMaxBodyBytes = 1 << 20

// Config holds HTTP gateway configuration.
type Config struct {
	Bind            string        `yaml:"bind"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	DefaultSession  string        `yaml:"default_session"`
	Ops             OpsConfig     `yaml:"ops"`
}

// OpsConfig controls the operational endpoints (/health, /metrics).
type OpsConfig struct {
	Enabled *bool      `yaml:"enabled"`
	Auth    AuthConfig `yaml:"auth"`
}

// AuthConfig configures authentication for the operational endpoints.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token"`
	BasicUser   string `yaml:"basic_user"`
	BasicPass   string `yaml:"basic_pass"`
}

// IsConfigured returns true if any auth method is configured.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != "" || (a.BasicUser != "" && a.BasicPass != "")
}

// defaults fills zero values with sensible defaults. WriteTimeout stays
// zero unless set: inference calls have no deadline.
func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8787"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.DefaultSession == "" {
		c.DefaultSession = session.DefaultID
	}
	if c.Ops.Enabled == nil {
		t := true
		c.Ops.Enabled = &t
	}
}

func (c *Config) opsEnabled() bool {
	return c.Ops.Enabled == nil || *c.Ops.Enabled
}

func (c *Config) validate() error {
	if _, err := net.ResolveTCPAddr("tcp", c.Bind); err != nil {
		return fmt.Errorf("gateway: invalid bind address %q: %w", c.Bind, err)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("gateway: write_timeout must be non-negative, got %s", c.WriteTimeout)
	}
	a := c.Ops.Auth
	if (a.BasicUser == "") != (a.BasicPass == "") {
		return fmt.Errorf("gateway: ops.auth requires both basic_user and basic_pass")
	}
	return nil
}
