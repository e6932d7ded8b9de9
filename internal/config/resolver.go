package config

import (
	"cmp"
	"slices"

	"github.com/flemzord/relaychat/internal/core"
)

// namespaceRank orders modules so that dependencies start first and stop
// last: telemetry, then storage, then inference, then the HTTP gateway.
var namespaceRank = map[string]int{
	"telemetry": 0,
	"memory":    1,
	"provider":  2,
	"gateway":   3,
}

// Resolve returns the module IDs from the configuration in load order.
// Unknown namespaces sort after the known ones; ties break on ID.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(rank(a), rank(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return ids
}

func rank(id string) int {
	if r, ok := namespaceRank[core.ModuleID(id).Namespace()]; ok {
		return r
	}
	return len(namespaceRank)
}
