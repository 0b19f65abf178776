// internal/game/types.go
//
// Core type definitions for the tile-guessing game engine.
// Defines:
//   - Status: coarse round state (playing/won/gameover/completed).
//   - Event:  what the last transition did, for renderers and logs.
//   - Tile:   one selectable letter of the shuffled target word.
//   - State:  immutable snapshot of a running game.

package game

import "errors"

const (
	// StartLives is the number of lives a fresh game begins with.
	StartLives = 5
	// StartLevel is the first level of a fresh game.
	StartLevel = 1
)

// Status represents the state of the current round.
type Status string

const (
	StatusPlaying   Status = "playing"
	StatusWon       Status = "won"       // correct guess, waiting for Advance
	StatusGameOver  Status = "gameover"  // terminal until Reset
	StatusCompleted Status = "completed" // no word for the next level; terminal until Reset
)

// Event names the transition that produced a State.
type Event string

const (
	EventNone      Event = ""
	EventNewRound  Event = "new_round"
	EventLetter    Event = "letter"
	EventLifeLost  Event = "life_lost"
	EventWon       Event = "won"
	EventGameOver  Event = "game_over"
	EventLevelUp   Event = "level_up"
	EventCompleted Event = "completed"
	EventReset     Event = "reset"
)

var (
	ErrTileRange  = errors.New("tile out of range")
	ErrTileUsed   = errors.New("tile already used")
	ErrNotPlaying = errors.New("round is not accepting letters")
	ErrNotWon     = errors.New("round has not been won")
)

// Tile is a single selectable letter. Used tiles stay disabled for the rest
// of the round.
type Tile struct {
	Letter rune
	Used   bool
}

// Shuffler permutes letters in place. Engines take it as an argument so the
// reducer itself stays deterministic.
type Shuffler func(letters []rune)

// State holds one game snapshot. Transitions never mutate a State; they
// return a new one.
type State struct {
	Word   string // target word (uppercase)
	Guess  string // letters selected so far, len(Guess) <= len(Word)
	Tiles  []Tile
	Lives  int
	Level  int
	Status Status
	Last   Event
}
