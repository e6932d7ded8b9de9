// Package sqlite implements a persistent SQLite-backed memory module
// providing the memory.KV store. It uses modernc.org/sqlite (pure Go,
// no CGO) in WAL mode.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/flemzord/relaychat/internal/core"
	"github.com/flemzord/relaychat/internal/cron"
	"github.com/flemzord/relaychat/internal/memory"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

const maintenanceJob = "sqlite_maintenance"

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module publishes a SQLite-backed memory.KV as the "memory.kv" service.
type Module struct {
	config    Config
	logger    *slog.Logger
	kv        *KV
	scheduler *cron.Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "memory.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	kv, err := Open(context.Background(), m.config)
	if err != nil {
		return err
	}
	m.kv = kv

	if m.config.Maintenance != "" {
		m.scheduler = cron.NewScheduler(m.logger)
		job := cron.FuncJob{
			JobName: maintenanceJob,
			Expr:    m.config.Maintenance,
			Fn:      m.kv.Maintain,
		}
		if err := m.scheduler.RegisterJob(job); err != nil {
			_ = m.kv.Close()
			return err
		}
	}

	ctx.RegisterService(memory.ServiceName, m.kv)

	m.logger.Info("sqlite memory module provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
		"maintenance", m.config.Maintenance,
	)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}
	if err := m.kv.Ping(context.Background()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	m.logger.Info("sqlite memory module stopping")
	if m.scheduler != nil {
		if err := m.scheduler.Stop(ctx); err != nil {
			m.logger.Warn("sqlite maintenance did not stop cleanly", "error", err)
		}
	}
	if m.kv != nil {
		return m.kv.Close()
	}
	return nil
}

// KV returns the store. It is nil before Provision.
func (m *Module) KV() *KV {
	return m.kv
}
