// internal/httpserver/server.go
//
// HTTP server wiring for the wordtiles backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/debug/levels".
//   - Player identity: POST /player/token (see player.go).
//   - Game endpoints: mounted under /game (see routes_game.go).
//   - Shutdown: suspends every live session so progress is saved.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every request runs as some player: a JWT when one is presented,
//     otherwise an anonymous cookie id.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/internal/game"
	"github.com/robalobadob/wordtiles/internal/prefs"
	"github.com/robalobadob/wordtiles/internal/session"
	"github.com/robalobadob/wordtiles/internal/store"
	"github.com/robalobadob/wordtiles/internal/words"
)

// Config holds the server settings main reads from the environment.
type Config struct {
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	Secure         bool // production cookies (Secure, SameSite=None)
	ClientOrigin   string
	PrefsScope     string
	ResolveDelay   time.Duration
	Shuffle        game.Shuffler // nil → random
}

func (c Config) withDefaults() Config {
	if c.JWTSecret == "" {
		c.JWTSecret = "dev_secret_change_me"
	}
	if c.JWTExpiresDays <= 0 {
		c.JWTExpiresDays = 14
	}
	if c.CookieName == "" {
		c.CookieName = "wordtiles_token"
	}
	if c.ClientOrigin == "" {
		c.ClientOrigin = "http://localhost:5173"
	}
	if c.PrefsScope == "" {
		c.PrefsScope = prefs.DefaultScope
	}
	return c
}

// levelCounter is implemented by lookups that can report their size.
type levelCounter interface {
	Levels(ctx context.Context) (int, error)
}

// Server bundles router, session registry, and game storage.
type Server struct {
	r     *chi.Mux
	cfg   Config
	store store.Store
	words words.Lookup
	prefs prefs.Store

	mu       sync.Mutex        // guards byPlayer
	byPlayer map[string]string // player id → live session id

	httpSrv *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config, st store.Store, lookup words.Lookup, pf prefs.Store) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg.withDefaults(),
		store:    st,
		words:    lookup,
		prefs:    pf,
		byPlayer: make(map[string]string),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordtiles","endpoints":["/health","POST /player/token","POST /game/new","GET /game/{id}","POST /game/{id}/select","POST /game/{id}/reset","POST /game/{id}/suspend"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/levels", s.handleLevels)

	s.r.With(s.withPlayer).Post("/player/token", s.handleToken)
	s.mountGame(s.r.With(s.withPlayer))

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down and
// suspends all live sessions.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- s.httpSrv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.httpSrv.Shutdown(shutdownCtx)
	s.SuspendAll(shutdownCtx)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

// SuspendAll saves and closes every live session.
func (s *Server) SuspendAll(ctx context.Context) {
	all, err := s.store.All(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list sessions")
		return
	}
	for _, sess := range all {
		if err := sess.Suspend(ctx); err != nil && !errors.Is(err, session.ErrClosed) {
			log.Warn().Err(err).Str("session", sess.ID()).Msg("suspend session")
		}
		_ = s.store.Delete(ctx, sess.ID())
	}
	s.mu.Lock()
	s.byPlayer = make(map[string]string)
	s.mu.Unlock()
	log.Info().Int("sessions", len(all)).Msg("sessions suspended")
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// handleLevels reports how many levels the word store holds.
func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	lc, ok := s.words.(levelCounter)
	if !ok {
		http.Error(w, `{"error":"not_supported"}`, http.StatusNotImplemented)
		return
	}
	n, err := lc.Levels(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("count levels")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"levels": n})
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Debug().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}
