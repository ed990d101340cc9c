package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func (brokenStore) Increment(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func (brokenStore) Reset(context.Context, string) error {
	return errors.New("store down")
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_CountAll(t *testing.T) {
	store, _ := newFakeStore(t)
	e := echo.New()
	e.GET("/api/auth/check-email", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Middleware(&Config{Store: store, Rate: 2, Period: time.Minute}))

	rec := serve(e, http.MethodGet, "/api/auth/check-email")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/api/auth/check-email")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/api/auth/check-email")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestMiddleware_CountFailures(t *testing.T) {
	store, _ := newFakeStore(t)
	e := echo.New()
	fail := true
	e.POST("/login", func(c echo.Context) error {
		if fail {
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect password")
		}
		return c.NoContent(http.StatusNoContent)
	}, Middleware(&Config{Store: store, Rate: 2, CountMode: CountFailures}))

	fail = false
	for range 3 {
		rec := serve(e, http.MethodPost, "/login")
		require.Equal(t, http.StatusNoContent, rec.Code, "successes are free")
	}

	fail = true
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/login").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/login").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/login").Code)

	fail = false
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/login").Code)
}

func TestMiddleware_KeysPerRoute(t *testing.T) {
	store, _ := newFakeStore(t)
	limit := Middleware(&Config{Store: store, Rate: 1})
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/a", ok, limit)
	e.GET("/b", ok, limit)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/a").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/b").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/a").Code)
}

func TestMiddleware_StoreFailureFailsOpen(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Middleware(&Config{Store: brokenStore{}, Rate: 1}))

	for range 3 {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/").Code)
	}
}

func TestMiddleware_Defaults(t *testing.T) {
	cfg := &Config{}
	Middleware(cfg)

	assert.NotNil(t, cfg.Store)
	assert.Equal(t, 10, cfg.Rate)
	assert.Equal(t, time.Minute, cfg.Period)
	assert.Equal(t, CountAll, cfg.CountMode)
	assert.NotNil(t, cfg.KeyGenerator)
	assert.NotNil(t, cfg.OnLimitReached)

	if s, ok := cfg.Store.(*MemoryStore); ok {
		s.Close()
	}
}

func TestDefaultKeyGenerator(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Real-IP", "203.0.113.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/login")

	assert.Equal(t, "rate_limit:/login:203.0.113.7", DefaultKeyGenerator(c))
}
