// Package inmemory registers a process-local memory.KV module. Data does
// not survive a restart; it suits development and tests.
package inmemory

import (
	"github.com/flemzord/relaychat/internal/core"
	"github.com/flemzord/relaychat/internal/memory"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var _ core.Provisioner = (*Module)(nil)

// Module publishes a memory.InMemoryKV as the "memory.kv" service.
type Module struct {
	kv *memory.InMemoryKV
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "memory.inmemory",
		New: func() core.Module { return &Module{} },
	}
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.kv = memory.NewInMemoryKV()
	ctx.RegisterService(memory.ServiceName, m.kv)
	ctx.Logger.Warn("in-memory store enabled, history is lost on restart")
	return nil
}
