package core

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// catalog holds every module compiled into the binary, keyed by ID.
// Entries are added from package init functions, so reads after main
// starts never race with writes.
type catalog struct {
	mu      sync.RWMutex
	entries map[ModuleID]ModuleInfo
}

var builtin = &catalog{entries: make(map[ModuleID]ModuleInfo)}

func (c *catalog) add(info ModuleInfo) error {
	if info.ID == "" {
		return errors.New("module without ID")
	}
	if ns, name, ok := strings.Cut(string(info.ID), "."); !ok || ns == "" || name == "" {
		return fmt.Errorf("module %q: ID must have the form <namespace>.<name>", info.ID)
	}
	if info.New == nil {
		return fmt.Errorf("module %s: missing constructor", info.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.entries[info.ID]; dup {
		return fmt.Errorf("module %s registered twice", info.ID)
	}
	c.entries[info.ID] = info
	return nil
}

func (c *catalog) lookup(id ModuleID) (ModuleInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.entries[id]
	return info, ok
}

func (c *catalog) sorted() []ModuleInfo {
	c.mu.RLock()
	out := make([]ModuleInfo, 0, len(c.entries))
	for _, info := range c.entries {
		out = append(out, info)
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b ModuleInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// RegisterModule adds a module to the built-in catalog. Module packages call
// it from init, so the blank imports in cmd/relaychat decide which of
// memory.sqlite, provider.anthropic, telemetry.otlp and friends exist.
// It panics on an empty or un-namespaced ID, a nil constructor, or an ID
// registered twice.
func RegisterModule(instance Module) {
	if err := builtin.add(instance.ModuleInfo()); err != nil {
		panic("core: " + err.Error())
	}
}

// GetModule looks up a compiled-in module. The config validator uses it to
// reject unknown IDs before anything is instantiated.
func GetModule(id string) (ModuleInfo, bool) {
	return builtin.lookup(ModuleID(id))
}

// GetModules lists the compiled-in modules ordered by ID, as printed by
// `relaychat version`.
func GetModules() []ModuleInfo {
	return builtin.sorted()
}

// resetRegistry empties the catalog between tests.
func resetRegistry() {
	builtin.mu.Lock()
	defer builtin.mu.Unlock()
	builtin.entries = make(map[ModuleID]ModuleInfo)
}
