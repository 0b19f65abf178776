// internal/game/engine.go
//
// Reducer for a single tile-guessing game.
// Responsibilities:
//   - Build rounds from a level's word with freshly shuffled tiles.
//   - Apply tile selections and resolve a round once the guess is full.
//   - Track state transitions: playing → won → next level / completed,
//     playing → (life lost → playing) | gameover.
//
// Notes:
//   - Every function takes a State by value and returns a new one; slices are
//     copied so callers can keep old snapshots.
//   - Word lookup is the caller's job: Advance receives the next word and
//     whether the lookup found one.

package game

import (
	"strings"
	"unicode/utf8"
)

// NewRound starts a round for level with the given word and lives.
func NewRound(level int, word string, lives int, shuffle Shuffler) State {
	word = strings.ToUpper(strings.TrimSpace(word))
	return State{
		Word:   word,
		Tiles:  dealTiles(word, shuffle),
		Lives:  lives,
		Level:  level,
		Status: StatusPlaying,
		Last:   EventNewRound,
	}
}

// Completed returns the terminal "all levels complete" state for level.
func Completed(level, lives int) State {
	return State{Lives: lives, Level: level, Status: StatusCompleted, Last: EventCompleted}
}

// Reset starts over at the first level with full lives.
func Reset(firstWord string, found bool, shuffle Shuffler) State {
	if !found {
		return Completed(StartLevel, StartLives)
	}
	s := NewRound(StartLevel, firstWord, StartLives, shuffle)
	s.Last = EventReset
	return s
}

// Select appends the letter of tile idx to the guess and disables the tile.
// When the guess reaches the word length the round is resolved in the same
// transition:
//   - equal guess → StatusWon (caller schedules Advance);
//   - wrong guess with lives left → one life lost, guess cleared, tiles reshuffled;
//   - wrong guess with no lives → StatusGameOver, every tile disabled.
func Select(s State, idx int, shuffle Shuffler) (State, error) {
	if s.Status != StatusPlaying {
		return s, ErrNotPlaying
	}
	if idx < 0 || idx >= len(s.Tiles) {
		return s, ErrTileRange
	}
	if s.Tiles[idx].Used {
		return s, ErrTileUsed
	}

	next := s
	next.Tiles = cloneTiles(s.Tiles)
	next.Tiles[idx].Used = true
	next.Guess = s.Guess + string(s.Tiles[idx].Letter)
	next.Last = EventLetter

	if utf8.RuneCountInString(next.Guess) < utf8.RuneCountInString(next.Word) {
		return next, nil
	}

	switch {
	case next.Guess == next.Word:
		next.Status = StatusWon
		next.Last = EventWon
	case next.Lives > 0:
		next.Lives--
		next.Guess = ""
		next.Tiles = dealTiles(next.Word, shuffle)
		next.Last = EventLifeLost
	default:
		for i := range next.Tiles {
			next.Tiles[i].Used = true
		}
		next.Status = StatusGameOver
		next.Last = EventGameOver
	}
	return next, nil
}

// Advance moves a won round to the next level. If the lookup for the next
// level found nothing the game is completed.
func Advance(s State, nextWord string, found bool, shuffle Shuffler) (State, error) {
	if s.Status != StatusWon {
		return s, ErrNotWon
	}
	if !found {
		return Completed(s.Level+1, s.Lives), nil
	}
	next := NewRound(s.Level+1, nextWord, s.Lives, shuffle)
	next.Last = EventLevelUp
	return next, nil
}

// Slots renders the guess as one entry per letter of the word, "_" for
// letters not yet chosen.
func (s State) Slots() []string {
	out := make([]string, 0, len(s.Word))
	guess := []rune(s.Guess)
	for i := range []rune(s.Word) {
		if i < len(guess) {
			out = append(out, string(guess[i]))
		} else {
			out = append(out, "_")
		}
	}
	return out
}

// Terminal reports whether only Reset can leave this state.
func (s State) Terminal() bool {
	return s.Status == StatusGameOver || s.Status == StatusCompleted
}

func dealTiles(word string, shuffle Shuffler) []Tile {
	letters := []rune(word)
	if shuffle != nil {
		shuffle(letters)
	}
	tiles := make([]Tile, len(letters))
	for i, r := range letters {
		tiles[i] = Tile{Letter: r}
	}
	return tiles
}

func cloneTiles(t []Tile) []Tile {
	out := make([]Tile, len(t))
	copy(out, t)
	return out
}
