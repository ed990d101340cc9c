package server

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func createTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: "0",
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestNew_RecoversPanics(t *testing.T) {
	srv := New(createTestConfig(), logging.NewNop())
	srv.Echo().GET("/boom", func(echo.Context) error { panic("boom") })

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNew_RequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv := New(createTestConfig(), logging.NewFromZap(zap.New(core)))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	srv.Echo().GET("/dashboard", ok)
	srv.Echo().GET("/healthz", ok)
	srv.Echo().GET("/metrics", ok)

	serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	serve(srv, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	serve(srv, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "request", entries[0].Message)
	assert.Equal(t, "/dashboard", entries[0].ContextMap()["uri"])
	assert.Equal(t, "client error", entries[1].Message)
	assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status"])
}

func TestNew_TrustedProxies(t *testing.T) {
	cfg := createTestConfig()
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "not-a-cidr"}
	srv := New(cfg, logging.NewNop())
	srv.Echo().GET("/ip", func(c echo.Context) error {
		return c.String(http.StatusOK, c.RealIP())
	})

	t.Run("trusted proxy", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		req.RemoteAddr = "10.1.2.3:4000"
		req.Header.Set(echo.HeaderXForwardedFor, "203.0.113.7")

		assert.Equal(t, "203.0.113.7", serve(srv, req).Body.String())
	})

	t.Run("untrusted peer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		req.Header.Set(echo.HeaderXForwardedFor, "203.0.113.7")

		assert.Equal(t, "198.51.100.9", serve(srv, req).Body.String())
	})
}

type recordingShutdowner struct {
	called atomic.Bool
}

func (s *recordingShutdowner) Shutdown(...fx.ShutdownOption) error {
	s.called.Store(true)
	return nil
}

func TestLifecycle_StartAndStop(t *testing.T) {
	srv := New(createTestConfig(), logging.NewNop())
	srv.Echo().GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	lc := fxtest.NewLifecycle(t)
	shutdowner := &recordingShutdowner{}
	registerLifecycle(lc, srv, shutdowner)
	lc.RequireStart()

	require.Eventually(t, func() bool {
		return srv.Echo().ListenerAddr() != nil
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Echo().ListenerAddr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	lc.RequireStop()
	assert.False(t, shutdowner.called.Load(), "a clean shutdown is not a failure")
}

func TestLifecycle_ListenFailure(t *testing.T) {
	cfg := createTestConfig()
	cfg.Server.Host = "256.0.0.1"
	srv := New(cfg, logging.NewNop())

	lc := fxtest.NewLifecycle(t)
	shutdowner := &recordingShutdowner{}
	registerLifecycle(lc, srv, shutdowner)
	lc.RequireStart()

	assert.Eventually(t, func() bool { return shutdowner.called.Load() }, 2*time.Second, 10*time.Millisecond)
	lc.RequireStop()
}
