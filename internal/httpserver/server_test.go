package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/config"
	"github.com/MrSnakeDoc/multiverse/internal/debounce/debouncetest"
	"github.com/MrSnakeDoc/multiverse/internal/domain"
	"github.com/MrSnakeDoc/multiverse/internal/favorites"
	"github.com/MrSnakeDoc/multiverse/internal/graphql"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/kvstore"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
	"github.com/MrSnakeDoc/multiverse/internal/search"
)

type fakeSource struct {
	mu         sync.Mutex
	list       []domain.Character
	err        error
	pingErr    error
	lastFilter domain.CharacterFilter
	byIDsCalls int
}

func (f *fakeSource) Characters(_ context.Context, _ int, filter domain.CharacterFilter) (graphql.CharacterPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	out := append([]domain.Character(nil), f.list...)
	return graphql.CharacterPage{Info: domain.Info{Count: len(out), Pages: 1}, Results: out}, f.err
}

func (f *fakeSource) Character(_ context.Context, id string) (domain.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Character{}, f.err
	}
	for _, c := range f.list {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Character{}, graphql.ErrNotFound
}

func (f *fakeSource) CharactersByIDs(_ context.Context, ids []string) ([]domain.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDsCalls++
	var out []domain.Character
	for _, id := range ids {
		for _, c := range f.list {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, f.err
}

func (f *fakeSource) Episodes(context.Context, int) (graphql.EpisodePage, error) {
	return graphql.EpisodePage{Info: domain.Info{Count: 1, Pages: 1}, Results: []domain.Episode{{ID: "1", Name: "Pilot", Code: "S01E01"}}}, nil
}

func (f *fakeSource) Locations(context.Context, int) (graphql.LocationPage, error) {
	return graphql.LocationPage{Info: domain.Info{Count: 1, Pages: 1}, Results: []domain.Location{{ID: "1", Name: "Earth (C-137)"}}}, nil
}

func (f *fakeSource) Ping(context.Context) error { return f.pingErr }

type testEnv struct {
	handler http.Handler
	kv      *kvstore.Memory
	source  *fakeSource
	clock   *debouncetest.Clock
	deps    deps.Deps
}

type envOption func(*deps.Deps)

func newEnv(t *testing.T, mode favorites.Mode, opts ...envOption) *testEnv {
	t.Helper()

	ctx := context.Background()
	log := logger.NewNop()
	kv := kvstore.NewMemory()
	clock := debouncetest.New()
	source := &fakeSource{list: []domain.Character{
		{ID: "1", Name: "Rick Sanchez", Status: "Alive"},
		{ID: "2", Name: "Morty Smith", Status: "Alive"},
		{ID: "3", Name: "Summer Smith", Status: "Alive"},
	}}
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	d := deps.Deps{
		Logger:                log,
		StartTime:             created,
		Version:               "test",
		TimeNow:               func() time.Time { return created.Add(time.Minute) },
		RateLimitBurst:        100,
		RateLimitRefillPerMin: 100,
		Storage:               kv,
		Favorites:             favorites.New(ctx, kv, mode, log),
		Comments:              comments.New(kv, log, comments.WithClock(func() time.Time { return created })),
		Search:                search.New(500*time.Millisecond, search.WithClock(clock)),
		Characters:            source,
		Cache:                 graphql.NewCache(time.Minute),
		ReloadTrigger:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(&d)
	}

	cfg := &config.Config{ListenAddr: ":0", RequestTimeout: time.Second}
	srv := New(cfg, log, d)
	return &testEnv{handler: srv.Handler(), kv: kv, source: source, clock: clock, deps: d}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, rd)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type favoritesBody struct {
	Mode      string   `json:"mode"`
	Count     int      `json:"count"`
	IDs       []string `json:"ids"`
	Favorites []struct {
		ID        string            `json:"id"`
		Character *domain.Character `json:"character"`
	} `json:"favorites"`
	Characters []domain.Character `json:"characters"`
}

type stateBody struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

func TestFavoritesLifecycle(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)

	w := env.do(t, http.MethodPut, "/api/favorites/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, stateBody{ID: "1", Favorite: true}, decode[stateBody](t, w))

	// idempotent
	env.do(t, http.MethodPut, "/api/favorites/1", "")
	env.do(t, http.MethodPut, "/api/favorites/2", "")

	list := decode[favoritesBody](t, env.do(t, http.MethodGet, "/api/favorites", ""))
	assert.Equal(t, "ids", list.Mode)
	assert.Equal(t, []string{"1", "2"}, list.IDs)
	assert.Empty(t, list.Characters)

	raw, ok, err := env.kv.Get(context.Background(), kvstore.KeyFavoriteIDs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["1","2"]`, raw)

	w = env.do(t, http.MethodPost, "/api/favorites/1/toggle", "")
	assert.Equal(t, stateBody{ID: "1", Favorite: false}, decode[stateBody](t, w))
	w = env.do(t, http.MethodPost, "/api/favorites/1/toggle", "")
	assert.Equal(t, stateBody{ID: "1", Favorite: true}, decode[stateBody](t, w))

	w = env.do(t, http.MethodDelete, "/api/favorites/2", "")
	assert.Equal(t, stateBody{ID: "2", Favorite: false}, decode[stateBody](t, w))

	w = env.do(t, http.MethodDelete, "/api/favorites", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, env.deps.Favorites.Count())
}

func TestFavoritesExpandInIDsMode(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)
	env.do(t, http.MethodPut, "/api/favorites/2", "")

	list := decode[favoritesBody](t, env.do(t, http.MethodGet, "/api/favorites?expand=true", ""))
	require.Len(t, list.Characters, 1)
	assert.Equal(t, "Morty Smith", list.Characters[0].Name)
	assert.Equal(t, 1, env.source.byIDsCalls)
}

func TestFavoritesRecordModeSnapshotsCharacter(t *testing.T) {
	env := newEnv(t, favorites.ModeRecords)

	env.do(t, http.MethodPut, "/api/favorites/1", "")
	// unknown upstream: stored as a bare record
	env.do(t, http.MethodPut, "/api/favorites/99", "")

	list := decode[favoritesBody](t, env.do(t, http.MethodGet, "/api/favorites?expand=1", ""))
	assert.Equal(t, "records", list.Mode)
	assert.Equal(t, []string{"1", "99"}, list.IDs)
	require.Len(t, list.Characters, 2)
	assert.Equal(t, "Rick Sanchez", list.Characters[0].Name)
	assert.Equal(t, 0, env.source.byIDsCalls)

	raw, ok, err := env.kv.Get(context.Background(), kvstore.KeyFavoriteRecords)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "Rick Sanchez")
}

type commentsBody struct {
	CharacterID string             `json:"characterId"`
	Count       int                `json:"count"`
	Comments    []comments.Comment `json:"comments"`
}

func TestCommentsLifecycle(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)

	w := env.do(t, http.MethodPost, "/api/characters/1/comments", `{"text":"   "}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodPost, "/api/characters/1/comments", `{"text":"  wubba lubba  "}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[comments.Comment](t, w)
	assert.Equal(t, "wubba lubba", created.Text)
	assert.Equal(t, "1", created.CharacterID)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", created.CreatedAt)

	env.do(t, http.MethodPost, "/api/characters/2/comments", `{"text":"aw jeez"}`)

	list := decode[commentsBody](t, env.do(t, http.MethodGet, "/api/characters/1/comments", ""))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, created.ID, list.Comments[0].ID)

	w = env.do(t, http.MethodPatch, "/api/characters/1/comments/"+created.ID, `{"text":" "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPatch, "/api/characters/1/comments/nope", `{"text":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPatch, "/api/characters/1/comments/"+created.ID, `{"text":"edited"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edited", decode[comments.Comment](t, w).Text)

	w = env.do(t, http.MethodDelete, "/api/characters/1/comments/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodDelete, "/api/characters/1/comments/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	list = decode[commentsBody](t, env.do(t, http.MethodGet, "/api/characters/1/comments", ""))
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Comments)

	other := decode[commentsBody](t, env.do(t, http.MethodGet, "/api/characters/2/comments", ""))
	require.Equal(t, 1, other.Count)
	assert.Equal(t, "aw jeez", other.Comments[0].Text)
}

func TestUnpersistedMutationsAreReported(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)
	require.NoError(t, env.kv.Close())

	w := env.do(t, http.MethodPut, "/api/favorites/1", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[map[string]any](t, w)
	assert.Contains(t, body["error"], "store closed")
	assert.True(t, env.deps.Favorites.IsFavorite("1"), "memory keeps the change")

	w = env.do(t, http.MethodPost, "/api/characters/1/comments", `{"text":"wubba lubba"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body = decode[map[string]any](t, w)
	assert.Contains(t, body["error"], "not persisted")
	assert.NotNil(t, body["data"])

	w = env.do(t, http.MethodDelete, "/api/favorites", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCommentsRejectMalformedBody(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)

	w := env.do(t, http.MethodPost, "/api/characters/1/comments", `{"body":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPost, "/api/characters/1/comments", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchDebouncesIntoCharacterList(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)

	w := env.do(t, http.MethodPut, "/api/search", `{"term":"ri"}`)
	snap := decode[search.Snapshot](t, w)
	assert.Equal(t, search.Snapshot{Term: "ri", Settled: "", Pending: true}, snap)

	env.clock.Advance(300 * time.Millisecond)
	env.do(t, http.MethodPut, "/api/search", `{"term":"rick"}`)
	env.clock.Advance(300 * time.Millisecond)
	assert.Equal(t, "", env.deps.Search.Settled())

	env.clock.Advance(200 * time.Millisecond)
	snap = decode[search.Snapshot](t, env.do(t, http.MethodGet, "/api/search", ""))
	assert.Equal(t, search.Snapshot{Term: "rick", Settled: "rick", Pending: false}, snap)

	env.do(t, http.MethodGet, "/api/characters", "")
	require.NotNil(t, env.source.lastFilter.Name)
	assert.Equal(t, "rick", *env.source.lastFilter.Name)

	// explicit empty name overrides the settled term
	env.do(t, http.MethodGet, "/api/characters?name=", "")
	assert.Nil(t, env.source.lastFilter.Name)

	snap = decode[search.Snapshot](t, env.do(t, http.MethodDelete, "/api/search", ""))
	assert.Equal(t, search.Snapshot{Term: "", Settled: "rick", Pending: true}, snap)

	env.clock.Advance(500 * time.Millisecond)
	snap = decode[search.Snapshot](t, env.do(t, http.MethodGet, "/api/search", ""))
	assert.Equal(t, search.Snapshot{}, snap)
}

type listBody struct {
	Info    domain.Info `json:"info"`
	Results []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Favorite bool   `json:"favorite"`
	} `json:"results"`
	Error string `json:"error"`
}

func TestListCharactersSortAndStarred(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)
	env.do(t, http.MethodPut, "/api/favorites/2", "")
	env.do(t, http.MethodPut, "/api/favorites/3", "")

	body := decode[listBody](t, env.do(t, http.MethodGet, "/api/characters?sort=desc&starred=starred&status=ALIVE", ""))
	require.Len(t, body.Results, 2)
	assert.Equal(t, "Summer Smith", body.Results[0].Name)
	assert.Equal(t, "Morty Smith", body.Results[1].Name)
	assert.True(t, body.Results[0].Favorite)
	require.NotNil(t, env.source.lastFilter.Status)
	assert.Equal(t, "alive", *env.source.lastFilter.Status)

	body = decode[listBody](t, env.do(t, http.MethodGet, "/api/characters?starred=others", ""))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "1", body.Results[0].ID)
	assert.False(t, body.Results[0].Favorite)

	w := env.do(t, http.MethodGet, "/api/characters?page=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoteFailureReturnsPartialData(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)
	env.source.err = &graphql.ResponseError{Operation: "GetCharacters", Errors: []graphql.Error{{Message: "boom"}}}

	w := env.do(t, http.MethodGet, "/api/characters", "")
	require.Equal(t, http.StatusBadGateway, w.Code)

	var body struct {
		Error string   `json:"error"`
		Data  listBody `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "boom")
	assert.Len(t, body.Data.Results, 3)
}

func TestGetCharacter(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)
	env.do(t, http.MethodPut, "/api/favorites/1", "")
	env.do(t, http.MethodPost, "/api/characters/1/comments", `{"text":"genius"}`)

	var body struct {
		ID       string             `json:"id"`
		Name     string             `json:"name"`
		Favorite bool               `json:"favorite"`
		Comments []comments.Comment `json:"comments"`
	}
	w := env.do(t, http.MethodGet, "/api/characters/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Rick Sanchez", body.Name)
	assert.True(t, body.Favorite)
	require.Len(t, body.Comments, 1)
	assert.Equal(t, "genius", body.Comments[0].Text)

	w = env.do(t, http.MethodGet, "/api/characters/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogListings(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)

	eps := decode[graphql.EpisodePage](t, env.do(t, http.MethodGet, "/api/episodes?page=1", ""))
	require.Len(t, eps.Results, 1)
	assert.Equal(t, "S01E01", eps.Results[0].Code)

	locs := decode[graphql.LocationPage](t, env.do(t, http.MethodGet, "/api/locations", ""))
	require.Len(t, locs.Results, 1)
	assert.Equal(t, "Earth (C-137)", locs.Results[0].Name)
}

func TestProbes(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)

	w := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]any](t, w)
	assert.Equal(t, "ok", health["status"])
	assert.InDelta(t, 60.0, health["uptime_seconds"], 0.001)

	w = env.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	infra := decode[map[string]any](t, env.do(t, http.MethodGet, "/infra", ""))
	assert.Equal(t, "operational", infra["mode"])
	cache := infra["components"].(map[string]any)["cache"].(map[string]any)
	assert.Equal(t, "ttl", cache["mode"])
	assert.Contains(t, cache["stats"], "hits")

	env.source.pingErr = errors.New("dns")
	infra = decode[map[string]any](t, env.do(t, http.MethodGet, "/infra", ""))
	assert.Equal(t, "degraded", infra["mode"])

	require.NoError(t, env.kv.Close())
	w = env.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	infra = decode[map[string]any](t, env.do(t, http.MethodGet, "/infra", ""))
	assert.Equal(t, "critical", infra["mode"])
}

func TestReloadTrigger(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)

	w := env.do(t, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	w = env.do(t, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	<-env.deps.ReloadTrigger
	w = env.do(t, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestInfraRoutesAreCIDRGuarded(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs, func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})

	// httptest requests come from 192.0.2.1
	for _, path := range []string{"/healthz", "/readyz", "/infra"} {
		w := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	w := env.do(t, http.MethodGet, "/api/favorites", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMutationsAreRateLimited(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs, func(d *deps.Deps) {
		d.RateLimitBurst = 1
		d.RateLimitRefillPerMin = 1
	})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/favorites/1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPut, "/api/favorites/2", "").Code)
	// reads are not limited
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/favorites", "").Code)
}

func TestUnknownRoute(t *testing.T) {
	env := newEnv(t, favorites.ModeIDs)
	w := env.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}
