package otlp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const defaultServiceName = "relaychat"

// Config holds the configuration for the OTLP trace exporter.
type Config struct {
	// Endpoint is either a full URL (http://collector:4318) or host:port.
	Endpoint    string            `yaml:"endpoint"`
	Insecure    bool              `yaml:"insecure"`
	Headers     map[string]string `yaml:"headers"`
	ServiceName string            `yaml:"service_name"`
	SampleRatio *float64          `yaml:"sample_ratio"`
}

func (c *Config) defaults() {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
	if c.SampleRatio == nil {
		ratio := 1.0
		c.SampleRatio = &ratio
	}
}

func (c *Config) validate() error {
	if c.Endpoint == "" {
		return errors.New("telemetry.otlp: endpoint is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		u, err := url.Parse(c.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("telemetry.otlp: endpoint must be an http(s) URL or host:port, got %q", c.Endpoint)
		}
	}
	if r := *c.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.otlp: sample_ratio must be within [0, 1], got %v", r)
	}
	return nil
}
