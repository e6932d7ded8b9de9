package sqlite

import (
	"fmt"

	"github.com/flemzord/relaychat/internal/cron"
)

const (
	defaultBusyTimeout = 5000
	defaultDBFile      = "relaychat.db"
)

// Config holds the SQLite memory module configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/relaychat.db.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode for concurrent reads. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// Maintenance is an optional 5-field cron expression. When set, the
	// module periodically runs PRAGMA optimize and a WAL checkpoint.
	Maintenance string `yaml:"maintenance"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("sqlite: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	if c.Maintenance != "" {
		if err := cron.ValidateSchedule(c.Maintenance); err != nil {
			return fmt.Errorf("sqlite: invalid maintenance schedule %q: %w", c.Maintenance, err)
		}
	}
	return nil
}
