// internal/session/session.go
//
// A Session owns one running game for one player.
// Responsibilities:
//   - Resume: load saved lives/level and derive the round from the level's word.
//   - Drive the game reducer for tile selections and resets.
//   - Advance a won round after a delay, as a task tied to the session lifetime.
//   - Suspend: persist lives/level and tear the session down.
//
// Notes:
//   - All transitions are serialized by mu; delayed tasks take mu too and
//     re-check their context once they hold it.
//   - The observer is called with mu held and must not call back into the
//     session.

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/internal/game"
	"github.com/robalobadob/wordtiles/internal/prefs"
	"github.com/robalobadob/wordtiles/internal/words"
)

// DefaultResolveDelay is how long a won round is shown before the next level.
const DefaultResolveDelay = 2 * time.Second

var ErrClosed = errors.New("session closed")

// Observer receives every state a session transitions to.
type Observer func(s game.State)

// Options configures a session.
type Options struct {
	ID     string
	Player string // owner; used by transports for access checks
	Scope  string // preference scope progress is stored under

	Words   words.Lookup
	Prefs   prefs.Store
	Shuffle game.Shuffler

	// ResolveDelay postpones the level advance after a win. Zero advances
	// inline, inside the Select call that won the round.
	ResolveDelay time.Duration

	Observer Observer
}

type Session struct {
	id     string
	player string
	scope  string

	words   words.Lookup
	prefs   prefs.Store
	shuffle game.Shuffler
	delay   time.Duration
	observe Observer
	logger  zerolog.Logger

	sched *scheduler

	mu     sync.Mutex
	state  game.State
	closed bool
}

// Open resumes the game saved under opts.Scope. ctx bounds the loading
// only; the session's own lifetime ends with Suspend or Close.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Words == nil || opts.Prefs == nil {
		return nil, errors.New("session: words and prefs are required")
	}
	if opts.Scope == "" {
		opts.Scope = prefs.DefaultScope
	}
	if opts.Shuffle == nil {
		opts.Shuffle = game.RandomShuffler()
	}

	s := &Session{
		id:      opts.ID,
		player:  opts.Player,
		scope:   opts.Scope,
		words:   opts.Words,
		prefs:   opts.Prefs,
		shuffle: opts.Shuffle,
		delay:   opts.ResolveDelay,
		observe: opts.Observer,
		logger:  log.With().Str("session", opts.ID).Logger(),
		sched:   newScheduler(context.Background()),
	}

	p, err := prefs.LoadProgress(ctx, s.prefs, s.scope)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	word, ok, err := s.words.WordFor(ctx, p.Level)
	if err != nil {
		return nil, err
	}
	if ok {
		s.state = game.NewRound(p.Level, word, p.Lives, s.shuffle)
	} else {
		s.state = game.Completed(p.Level, p.Lives)
	}
	s.logger.Info().Int("level", p.Level).Int("lives", p.Lives).Str("status", string(s.state.Status)).Msg("session resumed")
	s.emit()
	return s, nil
}

func (s *Session) ID() string     { return s.id }
func (s *Session) Player() string { return s.player }

// State returns the current snapshot.
func (s *Session) State() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select picks tile idx. A win either advances inline or schedules the
// advance, depending on the resolve delay.
func (s *Session) Select(ctx context.Context, idx int) (game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, ErrClosed
	}

	next, err := game.Select(s.state, idx, s.shuffle)
	if err != nil {
		return s.state, err
	}
	s.state = next
	s.emit()

	switch next.Last {
	case game.EventLifeLost:
		s.logger.Info().Int("level", next.Level).Int("lives", next.Lives).Msg("wrong guess")
	case game.EventGameOver:
		s.logger.Info().Int("level", next.Level).Msg("game over")
	case game.EventWon:
		s.logger.Info().Int("level", next.Level).Msg("level solved")
		if s.delay <= 0 {
			if err := s.advanceLocked(ctx); err != nil {
				return s.state, err
			}
		} else {
			s.sched.after(s.delay, s.advanceLater)
		}
	}
	return s.state, nil
}

// advanceLater is the scheduled form of the level advance.
func (s *Session) advanceLater(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || s.closed {
		return
	}
	if err := s.advanceLocked(ctx); err != nil {
		s.logger.Error().Err(err).Msg("advance level")
	}
}

func (s *Session) advanceLocked(ctx context.Context) error {
	if s.state.Status != game.StatusWon {
		return nil
	}
	word, ok, err := s.words.WordFor(ctx, s.state.Level+1)
	if err != nil {
		return err
	}
	next, err := game.Advance(s.state, word, ok, s.shuffle)
	if err != nil {
		return err
	}
	s.state = next
	if next.Status == game.StatusCompleted {
		s.logger.Info().Int("level", next.Level).Msg("all levels complete")
	}
	s.emit()
	return nil
}

// Reset starts over at level 1 with full lives. It is the way out of
// game over and of the completed state.
func (s *Session) Reset(ctx context.Context) (game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, ErrClosed
	}
	s.sched.cancelPending()

	word, ok, err := s.words.WordFor(ctx, game.StartLevel)
	if err != nil {
		return s.state, err
	}
	s.state = game.Reset(word, ok, s.shuffle)
	s.logger.Info().Msg("game reset")
	s.emit()
	return s.state, nil
}

// Save persists lives and level. A pending level advance is settled first
// so a solved level is not replayed. Terminal states save a fresh game.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Session) saveLocked(ctx context.Context) error {
	if err := s.advanceLocked(ctx); err != nil {
		return err
	}
	p := prefs.Progress{Lives: s.state.Lives, Level: s.state.Level}
	if s.state.Terminal() {
		p = prefs.DefaultProgress()
	}
	if err := prefs.SaveProgress(ctx, s.prefs, s.scope, p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	s.logger.Debug().Int("level", p.Level).Int("lives", p.Lives).Msg("progress saved")
	return nil
}

// Suspend saves progress and closes the session.
func (s *Session) Suspend(ctx context.Context) error {
	s.sched.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	err := s.saveLocked(ctx)
	s.closed = true
	s.logger.Info().Msg("session suspended")
	return err
}

// Close tears the session down without saving. Pending tasks are cancelled
// and waited for.
func (s *Session) Close() {
	s.sched.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Session) emit() {
	if s.observe != nil {
		s.observe(s.state)
	}
}
