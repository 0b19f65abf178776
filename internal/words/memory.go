package words

import (
	"context"
	"sync"
)

// Memory is an in-memory Lookup, mainly for tests.
type Memory struct {
	mu    sync.RWMutex
	words map[int]string
}

// NewMemory returns a Lookup serving the given entries.
func NewMemory(entries ...Entry) *Memory {
	m := &Memory{words: make(map[int]string, len(entries))}
	for _, e := range entries {
		if _, ok := m.words[e.Level]; !ok {
			m.words[e.Level] = e.Word
		}
	}
	return m
}

// Defaults returns the three levels every fresh database is seeded with.
func Defaults() []Entry {
	return []Entry{{1, "BOOK"}, {2, "HOUSE"}, {3, "GARDEN"}}
}

func (m *Memory) WordFor(ctx context.Context, level int) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.words[level]
	return w, ok, nil
}

func (m *Memory) Levels(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.words), nil
}
