// internal/prefs/prefs.go
//
// Integer key-value preferences grouped under a named scope.
// Used to persist a player's lives and level between sessions.
//
// Implementations:
//   - SQLStore: rows in the preferences table (survives restarts).
//   - Memory:   map-based, for tests and ephemeral runs.

package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// Store reads and writes integer preferences.
type Store interface {
	// Int returns the value under scope/key, or def if nothing was stored.
	Int(ctx context.Context, scope, key string, def int) (int, error)

	// PutInts writes all values for scope atomically.
	PutInts(ctx context.Context, scope string, values map[string]int) error
}

// SQLStore keeps preferences in SQLite.
type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Int(ctx context.Context, scope, key string, def int) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE scope=? AND key=?`, scope, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("read %s/%s: %w", scope, key, err)
	}
	return v, nil
}

func (s *SQLStore) PutInts(ctx context.Context, scope string, values map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for k, v := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO preferences (scope, key, value, updated_at)
			VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
			ON CONFLICT(scope, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			scope, k, v,
		); err != nil {
			return fmt.Errorf("write %s/%s: %w", scope, k, err)
		}
	}
	return tx.Commit()
}

// Memory is a map-based Store guarded by a RWMutex.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string]int // scope → key → value
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]map[string]int)}
}

func (m *Memory) Int(ctx context.Context, scope, key string, def int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[scope][key]; ok {
		return v, nil
	}
	return def, nil
}

func (m *Memory) PutInts(ctx context.Context, scope string, values map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.values[scope]
	if !ok {
		sc = make(map[string]int, len(values))
		m.values[scope] = sc
	}
	for k, v := range values {
		sc[k] = v
	}
	return nil
}
