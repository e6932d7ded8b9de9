package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// The hooks below are optional. LoadModule runs the first three for one
// module at a time, and config.Resolve orders modules by namespace
// (telemetry, memory, provider, gateway), so a hook may rely on services
// published by an earlier namespace.

// Configurable receives the module's section under `modules:` in
// relaychat.yaml. It is skipped when the module has no section.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner fills defaults, resolves secrets from the environment, opens
// storage and publishes services such as "memory.kv" or
// "provider.inference". gateway.http looks both of those up here.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator rejects a provisioned module whose settings cannot work, for
// example a provider with no API key. It must not mutate the module.
type Validator interface {
	Validate() error
}

// Starter begins serving once every module has loaded; gateway.http binds
// its listener here. A failed Start stops the modules started before it.
type Starter interface {
	Start() error
}

// Stopper releases what Provision or Start acquired, such as the SQLite
// handle or the HTTP listener. App calls it newest-first.
type Stopper interface {
	Stop(ctx context.Context) error
}
