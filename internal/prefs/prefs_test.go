package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordtiles/assets"
	"github.com/robalobadob/wordtiles/internal/db"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	conn, err := db.OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "prefs.db"), assets.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return map[string]Store{
		"sqlite": NewSQLStore(conn),
		"memory": NewMemory(),
	}
}

func TestProgress_Defaults(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			p, err := LoadProgress(context.Background(), st, DefaultScope)
			require.NoError(t, err)
			assert.Equal(t, Progress{Lives: 5, Level: 1}, p)
		})
	}
}

func TestProgress_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, SaveProgress(ctx, st, DefaultScope, Progress{Lives: 3, Level: 2}))

			p, err := LoadProgress(ctx, st, DefaultScope)
			require.NoError(t, err)
			assert.Equal(t, Progress{Lives: 3, Level: 2}, p)

			require.NoError(t, SaveProgress(ctx, st, DefaultScope, Progress{Lives: 0, Level: 3}))
			p, err = LoadProgress(ctx, st, DefaultScope)
			require.NoError(t, err)
			assert.Equal(t, Progress{Lives: 0, Level: 3}, p)
		})
	}
}

func TestProgress_ScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, SaveProgress(ctx, st, "GamePreferences:a", Progress{Lives: 1, Level: 3}))

			p, err := LoadProgress(ctx, st, "GamePreferences:b")
			require.NoError(t, err)
			assert.Equal(t, DefaultProgress(), p)
		})
	}
}

func TestProgress_Clamp(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	require.NoError(t, st.PutInts(ctx, DefaultScope, map[string]int{"Lives": 9, "Level": -2}))

	p, err := LoadProgress(ctx, st, DefaultScope)
	require.NoError(t, err)
	assert.Equal(t, Progress{Lives: 5, Level: 1}, p)
}
