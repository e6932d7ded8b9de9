package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/flemzord/relaychat/internal/core"
)

// Validate checks the structural validity of a Config.
// It verifies the version field, ensures modules are present, checks that
// all referenced module IDs exist in the registry, and enforces that exactly
// one storage backend, exactly one inference provider and the HTTP gateway
// are enabled.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
		return errors.Join(errs...)
	}

	ids := Resolve(cfg)
	for _, id := range ids {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	errs = append(errs, requireOne(ids, "memory")...)
	errs = append(errs, requireOne(ids, "provider")...)

	if !slices.Contains(ids, "gateway.http") {
		errs = append(errs, errors.New("config: module \"gateway.http\" must be enabled"))
	}

	return errors.Join(errs...)
}

// requireOne reports an error unless exactly one enabled module lives in namespace.
func requireOne(ids []string, namespace string) []error {
	var found []string
	for _, id := range ids {
		if core.ModuleID(id).Namespace() == namespace {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 1:
		return nil
	case 0:
		return []error{fmt.Errorf("config: exactly one %s.* module is required, none configured", namespace)}
	default:
		return []error{fmt.Errorf("config: exactly one %s.* module is required, got %v", namespace, found)}
	}
}
