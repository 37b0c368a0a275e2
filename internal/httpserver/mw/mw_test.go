package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, false, logger.NewNop())(okHandler)

	tests := []struct {
		remote string
		want   int
	}{
		{"10.2.3.4:1234", http.StatusNoContent},
		{"192.168.0.1:1234", http.StatusForbidden},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		r.RemoteAddr = tt.remote
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, tt.want, w.Code, tt.remote)
	}
}

func TestAllowOnlyCIDRSPassthrough(t *testing.T) {
	h := AllowOnlyCIDRS(nil, false, logger.NewNop())(okHandler)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"api.example.com", "api.example.com", true},
		{"a.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"badexample.com", "*.example.com", false},
		{"other.com", "example.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchHost(tt.host, tt.pattern), "%s vs %s", tt.host, tt.pattern)
	}
}

func TestEnforceHostIgnoresPortAndCase(t *testing.T) {
	h := EnforceHost([]string{"Multiverse.local"}, logger.NewNop())(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/infra", nil)
	r.Host = "multiverse.local:8080"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusNoContent, w.Code)

	r.Host = "evil.local"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
	})(okHandler)

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/favorites/1/toggle", nil)
		r.RemoteAddr = "203.0.113.9:4000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	w := do()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, http.StatusNoContent, do().Code)

	w = do()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// one token per second
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, do().Code)
}

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, IdleTTL: time.Minute, Now: func() time.Time { return now }})
	l.allow("a", now)
	l.allow("b", now)
	require.Equal(t, 2, l.size())

	l.sweepMaybe(now.Add(2 * time.Minute))
	assert.Zero(t, l.size())
}

func TestLogCapturesStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := chi.NewRouter()
	r.Use(Log(logger.FromZap(zap.New(core))))
	r.Get("/teapot/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teapot/7", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["bytes"])
	assert.Equal(t, "/teapot/{id}", fields["route"])
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(okHandler)

	r := httptest.NewRequest(http.MethodOptions, "/api/favorites/1", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
