// Package memory defines the namespaced key-value contract that backs
// conversation history, together with an in-memory implementation.
package memory

import (
	"context"
	"errors"
)

// ServiceName is the service registry key under which the active store is
// published.
const ServiceName = "memory.kv"

// ErrEmptyNamespace is returned when an operation is called without a namespace.
var ErrEmptyNamespace = errors.New("memory: empty namespace")

// KV is a durable key-value store partitioned into namespaces. Each session
// owns one namespace, so data written under one namespace is never visible
// from another. Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key in ns. The boolean is false
	// when no value exists.
	Get(ctx context.Context, ns, key string) ([]byte, bool, error)

	// Put stores value under key in ns, replacing any previous value.
	Put(ctx context.Context, ns, key string, value []byte) error

	// DeleteAll removes every key in ns. Deleting an empty or unknown
	// namespace is not an error.
	DeleteAll(ctx context.Context, ns string) error

	// Namespaces returns the number of namespaces holding at least one key.
	Namespaces(ctx context.Context) (int, error)
}
