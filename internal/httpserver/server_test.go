package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordtiles/internal/prefs"
	"github.com/robalobadob/wordtiles/internal/store"
	"github.com/robalobadob/wordtiles/internal/words"
)

func newTestServer(t *testing.T) (*Server, prefs.Store) {
	t.Helper()
	pf := prefs.NewMemory()
	s := New(Config{
		JWTSecret: "test-secret",
		Shuffle:   func([]rune) {},
	}, store.NewMemoryStore(), words.NewMemory(words.Defaults()...), pf)
	t.Cleanup(func() { s.SuspendAll(context.Background()) })
	return s, pf
}

type client struct {
	t     *testing.T
	s     *Server
	token string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.s.Router().ServeHTTP(rec, req)
	return rec
}

func (c *client) view(rec *httptest.ResponseRecorder) gameView {
	c.t.Helper()
	var v gameView
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newPlayer(t *testing.T, s *Server) *client {
	t.Helper()
	c := &client{t: t, s: s}
	rec := c.do(http.MethodPost, "/player/token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		PlayerID string `json:"playerId"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.PlayerID)
	require.NotEmpty(t, out.Token)
	c.token = out.Token
	return c
}

func (c *client) pick(id string, tiles ...int) gameView {
	c.t.Helper()
	var v gameView
	for _, i := range tiles {
		rec := c.do(http.MethodPost, "/game/"+id+"/select", map[string]int{"tile": i})
		require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
		v = c.view(rec)
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}

	rec := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/debug/levels", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"levels":3}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGame_PlayThrough(t *testing.T) {
	s, _ := newTestServer(t)
	c := newPlayer(t, s)

	rec := c.do(http.MethodPost, "/game/new", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	v := c.view(rec)
	assert.Equal(t, 1, v.Level)
	assert.Equal(t, 5, v.Lives)
	assert.Equal(t, []string{"_", "_", "_", "_"}, v.Slots)
	require.Len(t, v.Tiles, 4)
	assert.Equal(t, "B", v.Tiles[0].Letter)
	assert.Empty(t, v.Answer)
	id := v.GameID

	v = c.pick(id, 0, 1)
	assert.Equal(t, []string{"B", "O", "_", "_"}, v.Slots)
	assert.True(t, v.Tiles[1].Used)

	v = c.pick(id, 2, 3)
	assert.Equal(t, 2, v.Level)
	assert.Equal(t, 5, v.Lives)
	assert.Equal(t, "playing", string(v.Status))
	assert.Equal(t, "level_up", string(v.Event))
	assert.Len(t, v.Tiles, 5)

	v = c.pick(id, 4, 3, 2, 1, 0)
	assert.Equal(t, 2, v.Level)
	assert.Equal(t, 4, v.Lives)
	assert.Equal(t, "life_lost", string(v.Event))

	rec = c.do(http.MethodGet, "/game/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, c.view(rec).Lives)
}

func TestGame_SelectErrors(t *testing.T) {
	s, _ := newTestServer(t)
	c := newPlayer(t, s)
	id := c.view(c.do(http.MethodPost, "/game/new", nil)).GameID

	rec := c.do(http.MethodPost, "/game/"+id+"/select", map[string]string{"letter": "B"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/game/"+id+"/select", map[string]int{"tile": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c.pick(id, 0)
	rec = c.do(http.MethodPost, "/game/"+id+"/select", map[string]int{"tile": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already used")
}

func TestGame_GameOverAndReset(t *testing.T) {
	s, pf := newTestServer(t)
	c := newPlayer(t, s)
	player, err := s.parseJWT(c.token)
	require.NoError(t, err)
	require.NoError(t, prefs.SaveProgress(context.Background(), pf, s.scopeFor(player), prefs.Progress{Lives: 0, Level: 1}))

	id := c.view(c.do(http.MethodPost, "/game/new", nil)).GameID
	v := c.pick(id, 3, 2, 1, 0)
	assert.Equal(t, "gameover", string(v.Status))
	assert.Equal(t, "BOOK", v.Answer)

	rec := c.do(http.MethodPost, "/game/"+id+"/select", map[string]int{"tile": 0})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, "/game/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v = c.view(rec)
	assert.Equal(t, "playing", string(v.Status))
	assert.Equal(t, 5, v.Lives)
	assert.Equal(t, 1, v.Level)
}

func TestGame_SuspendAndResume(t *testing.T) {
	s, _ := newTestServer(t)
	c := newPlayer(t, s)

	id := c.view(c.do(http.MethodPost, "/game/new", nil)).GameID
	c.pick(id, 0, 1, 2, 3)    // BOOK solved → level 2
	c.pick(id, 4, 3, 2, 1, 0) // HOUSE missed → 4 lives

	rec := c.do(http.MethodPost, "/game/"+id+"/suspend", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/game/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodPost, "/game/new", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	v := c.view(rec)
	assert.NotEqual(t, id, v.GameID)
	assert.Equal(t, 2, v.Level)
	assert.Equal(t, 4, v.Lives)
	assert.Equal(t, []string{"_", "_", "_", "_", "_"}, v.Slots)
}

func TestGame_NewReplacesLiveSession(t *testing.T) {
	s, _ := newTestServer(t)
	c := newPlayer(t, s)

	first := c.view(c.do(http.MethodPost, "/game/new", nil)).GameID
	c.pick(first, 3, 2, 1, 0)

	second := c.view(c.do(http.MethodPost, "/game/new", nil))
	assert.Equal(t, 4, second.Lives, "previous session was saved before resuming")

	rec := c.do(http.MethodGet, "/game/"+first, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGame_OtherPlayersCannotSeeSession(t *testing.T) {
	s, _ := newTestServer(t)
	alice := newPlayer(t, s)
	bob := newPlayer(t, s)

	id := alice.view(alice.do(http.MethodPost, "/game/new", nil)).GameID

	rec := bob.do(http.MethodGet, "/game/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = bob.do(http.MethodPost, "/game/"+id+"/select", map[string]int{"tile": 0})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGame_AnonymousCookie(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}

	rec := c.do(http.MethodPost, "/game/new", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := c.view(rec).GameID

	var anon *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == anonCookieName {
			anon = ck
		}
	}
	require.NotNil(t, anon)

	req := httptest.NewRequest(http.MethodGet, "/game/"+id, nil)
	req.AddCookie(anon)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/game/"+id, nil)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code, "a fresh anonymous player does not own it")
}

func TestParseJWT_RejectsForeignSecret(t *testing.T) {
	s, _ := newTestServer(t)
	tok, _, err := s.signJWT("p1")
	require.NoError(t, err)

	sub, err := s.parseJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, "p1", sub)

	other := New(Config{JWTSecret: "other"}, store.NewMemoryStore(), words.NewMemory(), prefs.NewMemory())
	_, err = other.parseJWT(tok)
	assert.Error(t, err)
}
