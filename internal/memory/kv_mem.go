package memory

import (
	"context"
	"slices"
	"sync"
)

// InMemoryKV is a thread-safe, in-memory implementation of KV.
// Values are copied on the way in and out so callers never share buffers
// with the store.
type InMemoryKV struct {
	mu         sync.RWMutex
	namespaces map[string]map[string][]byte
}

// NewInMemoryKV creates a new empty store.
func NewInMemoryKV() *InMemoryKV {
	return &InMemoryKV{
		namespaces: make(map[string]map[string][]byte),
	}
}

// Compile-time interface check.
var _ KV = (*InMemoryKV)(nil)

// Get implements KV.
func (s *InMemoryKV) Get(_ context.Context, ns, key string) ([]byte, bool, error) {
	if ns == "" {
		return nil, false, ErrEmptyNamespace
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.namespaces[ns][key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Put implements KV.
func (s *InMemoryKV) Put(_ context.Context, ns, key string, value []byte) error {
	if ns == "" {
		return ErrEmptyNamespace
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.namespaces[ns]
	if !ok {
		keys = make(map[string][]byte)
		s.namespaces[ns] = keys
	}
	if value == nil {
		value = []byte{}
	}
	keys[key] = slices.Clone(value)
	return nil
}

// DeleteAll implements KV.
func (s *InMemoryKV) DeleteAll(_ context.Context, ns string) error {
	if ns == "" {
		return ErrEmptyNamespace
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, ns)
	return nil
}

// Namespaces implements KV.
func (s *InMemoryKV) Namespaces(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces), nil
}
