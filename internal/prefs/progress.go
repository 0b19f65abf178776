package prefs

import (
	"context"

	"github.com/robalobadob/wordtiles/internal/game"
)

// DefaultScope is the preference scope progress is stored under.
const DefaultScope = "GamePreferences"

const (
	keyLives = "Lives"
	keyLevel = "Level"
)

// Progress is the persisted part of a game: word and guess are re-derived.
type Progress struct {
	Lives int
	Level int
}

// DefaultProgress is what a player without saved state starts with.
func DefaultProgress() Progress {
	return Progress{Lives: game.StartLives, Level: game.StartLevel}
}

// LoadProgress reads lives and level for scope, defaulting to 5 and 1.
func LoadProgress(ctx context.Context, st Store, scope string) (Progress, error) {
	p := DefaultProgress()
	var err error
	if p.Lives, err = st.Int(ctx, scope, keyLives, p.Lives); err != nil {
		return DefaultProgress(), err
	}
	if p.Level, err = st.Int(ctx, scope, keyLevel, p.Level); err != nil {
		return DefaultProgress(), err
	}
	return p.clamp(), nil
}

// SaveProgress writes lives and level for scope.
func SaveProgress(ctx context.Context, st Store, scope string, p Progress) error {
	p = p.clamp()
	return st.PutInts(ctx, scope, map[string]int{keyLives: p.Lives, keyLevel: p.Level})
}

func (p Progress) clamp() Progress {
	if p.Lives < 0 {
		p.Lives = 0
	}
	if p.Lives > game.StartLives {
		p.Lives = game.StartLives
	}
	if p.Level < game.StartLevel {
		p.Level = game.StartLevel
	}
	return p
}
