package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flemzord/relaychat/internal/provider"
)

// HistoryKey is the key under which a session's transcript is stored.
const HistoryKey = "history"

// LoadHistory reads the transcript stored in ns. A missing record yields an
// empty, non-nil history. Stored data is decoded as-is, without any version
// check.
func LoadHistory(ctx context.Context, kv KV, ns string) ([]provider.Message, error) {
	raw, ok, err := kv.Get(ctx, ns, HistoryKey)
	if err != nil {
		return nil, fmt.Errorf("memory: load history %q: %w", ns, err)
	}
	if !ok {
		return []provider.Message{}, nil
	}

	var history []provider.Message
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("memory: decode history %q: %w", ns, err)
	}
	if history == nil {
		history = []provider.Message{}
	}
	return history, nil
}

// SaveHistory overwrites the transcript stored in ns with history.
func SaveHistory(ctx context.Context, kv KV, ns string, history []provider.Message) error {
	if history == nil {
		history = []provider.Message{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("memory: encode history %q: %w", ns, err)
	}
	if err := kv.Put(ctx, ns, HistoryKey, raw); err != nil {
		return fmt.Errorf("memory: save history %q: %w", ns, err)
	}
	return nil
}
