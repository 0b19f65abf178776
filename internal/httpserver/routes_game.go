// internal/httpserver/routes_game.go
//
// HTTP routes for playing a game. Mounted under /game:
//   - POST /game/new          → resume the caller's saved progress in a new session
//   - GET  /game/{id}         → current view
//   - POST /game/{id}/select  → pick a tile {"tile": n}
//   - POST /game/{id}/reset   → start over at level 1 with full lives
//   - POST /game/{id}/suspend → save lives/level and end the session
//
// A player has at most one live session; opening a new one suspends the old
// one first so its progress is what the new session resumes.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/wordtiles/internal/game"
	"github.com/robalobadob/wordtiles/internal/session"
	"github.com/robalobadob/wordtiles/internal/store"
)

// tileView is one selectable letter as rendered to clients.
type tileView struct {
	Letter string `json:"letter"`
	Used   bool   `json:"used"`
}

// gameView is the JSON rendering of a game state.
type gameView struct {
	GameID string      `json:"gameId"`
	Level  int         `json:"level"`
	Lives  int         `json:"lives"`
	Status game.Status `json:"status"`
	Event  game.Event  `json:"event,omitempty"`
	Slots  []string    `json:"slots"`
	Tiles  []tileView  `json:"tiles"`
	Answer string      `json:"answer,omitempty"` // only once the round is decided
}

func newView(id string, st game.State) gameView {
	v := gameView{
		GameID: id,
		Level:  st.Level,
		Lives:  st.Lives,
		Status: st.Status,
		Event:  st.Last,
		Slots:  st.Slots(),
		Tiles:  make([]tileView, len(st.Tiles)),
	}
	for i, t := range st.Tiles {
		v.Tiles[i] = tileView{Letter: string(t.Letter), Used: t.Used}
	}
	if st.Status == game.StatusWon || st.Status == game.StatusGameOver {
		v.Answer = st.Word
	}
	return v
}

type selectReq struct {
	Tile *int `json:"tile"`
}

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Post("/select", s.handleSelect)
			r.Post("/reset", s.handleReset)
			r.Post("/suspend", s.handleSuspend)
		})
	})
}

func (s *Server) scopeFor(player string) string {
	return s.cfg.PrefsScope + ":" + player
}

// handleNewGame opens a session on the caller's saved progress.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())
	logger := hlog.FromRequest(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byPlayer[player]; ok {
		if old, err := s.store.Get(r.Context(), prev); err == nil {
			if err := old.Suspend(r.Context()); err != nil && !errors.Is(err, session.ErrClosed) {
				logger.Warn().Err(err).Str("session", prev).Msg("suspend previous session")
			}
		}
		_ = s.store.Delete(r.Context(), prev)
		delete(s.byPlayer, player)
	}

	sess, err := session.Open(r.Context(), session.Options{
		ID:           uuid.NewString(),
		Player:       player,
		Scope:        s.scopeFor(player),
		Words:        s.words,
		Prefs:        s.prefs,
		Shuffle:      s.cfg.Shuffle,
		ResolveDelay: s.cfg.ResolveDelay,
	})
	if err != nil {
		logger.Error().Err(err).Msg("open session")
		http.Error(w, `{"error":"open_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		sess.Close()
		logger.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	s.byPlayer[player] = sess.ID()

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newView(sess.ID(), sess.State()))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(newView(sess.ID(), sess.State()))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tile == nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	st, err := sess.Select(r.Context(), *req.Tile)
	if err != nil {
		s.gameError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(newView(sess.ID(), st))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	st, err := sess.Reset(r.Context())
	if err != nil {
		s.gameError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(newView(sess.ID(), st))
}

func (s *Server) handleSuspend(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	err := sess.Suspend(r.Context())
	s.forget(r.Context(), sess)
	if err != nil && !errors.Is(err, session.ErrClosed) {
		s.gameError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ownedSession loads the {id} session and checks the caller owns it.
// Sessions of other players are reported as missing.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil || sess.Player() != playerFrom(r.Context()) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) forget(ctx context.Context, sess *session.Session) {
	_ = s.store.Delete(ctx, sess.ID())
	s.mu.Lock()
	if s.byPlayer[sess.Player()] == sess.ID() {
		delete(s.byPlayer, sess.Player())
	}
	s.mu.Unlock()
}

// gameError maps reducer and session errors onto HTTP statuses.
func (s *Server) gameError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, game.ErrTileRange), errors.Is(err, game.ErrTileUsed):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
	case errors.Is(err, game.ErrNotPlaying):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
	case errors.Is(err, session.ErrClosed), errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("game operation")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}
}
