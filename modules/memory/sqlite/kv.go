package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flemzord/relaychat/internal/memory"
)

// KV implements memory.KV on a SQLite table keyed by (namespace, key).
type KV struct {
	db *sql.DB
}

// Compile-time interface check.
var _ memory.KV = (*KV)(nil)

// Get implements memory.KV.
func (s *KV) Get(ctx context.Context, ns, key string) ([]byte, bool, error) {
	if ns == "" {
		return nil, false, memory.ErrEmptyNamespace
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE namespace = ? AND key = ?", ns, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: get %s/%s: %w", ns, key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// Put implements memory.KV.
func (s *KV) Put(ctx context.Context, ns, key string, value []byte) error {
	if ns == "" {
		return memory.ErrEmptyNamespace
	}
	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (namespace, key, value) VALUES (?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		ns, key, value,
	)
	if err != nil {
		return fmt.Errorf("sqlite: put %s/%s: %w", ns, key, err)
	}
	return nil
}

// DeleteAll implements memory.KV.
func (s *KV) DeleteAll(ctx context.Context, ns string) error {
	if ns == "" {
		return memory.ErrEmptyNamespace
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE namespace = ?", ns); err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", ns, err)
	}
	return nil
}

// Namespaces implements memory.KV.
func (s *KV) Namespaces(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT namespace) FROM kv").Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count namespaces: %w", err)
	}
	return n, nil
}

// Maintain runs PRAGMA optimize and truncates the WAL. Row data is not touched.
func (s *KV) Maintain(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("sqlite: optimize: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("sqlite: wal checkpoint: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive.
func (s *KV) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database.
func (s *KV) Close() error {
	return s.db.Close()
}
