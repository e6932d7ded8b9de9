package session

import (
	"context"
	"sync"

	"github.com/flemzord/relaychat/internal/memory"
)

// faultyKV wraps an InMemoryKV, counts reads and can inject errors.
type faultyKV struct {
	*memory.InMemoryKV

	mu        sync.Mutex
	gets      int
	getErr    error
	putErr    error
	deleteErr error
}

func newFaultyKV() *faultyKV {
	return &faultyKV{InMemoryKV: memory.NewInMemoryKV()}
}

func (f *faultyKV) Get(ctx context.Context, ns, key string) ([]byte, bool, error) {
	f.mu.Lock()
	f.gets++
	err := f.getErr
	f.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return f.InMemoryKV.Get(ctx, ns, key)
}

func (f *faultyKV) Put(ctx context.Context, ns, key string, value []byte) error {
	f.mu.Lock()
	err := f.putErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.InMemoryKV.Put(ctx, ns, key, value)
}

func (f *faultyKV) DeleteAll(ctx context.Context, ns string) error {
	f.mu.Lock()
	err := f.deleteErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.InMemoryKV.DeleteAll(ctx, ns)
}

func (f *faultyKV) setGetErr(err error) {
	f.mu.Lock()
	f.getErr = err
	f.mu.Unlock()
}

func (f *faultyKV) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}
