package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	sm := scs.New()
	sm.Store = NewMemoryStore()
	sm.Cookie.Name = "test-session"
	sm.Lifetime = time.Hour

	return &Manager{
		SessionManager: sm,
		config:         config.SessionConfig{MaxAge: time.Hour},
	}
}

func createTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// loadSession attaches a fresh session and the manager to c, as Middleware
// would for a real request.
func loadSession(t *testing.T, c echo.Context, manager *Manager) {
	t.Helper()
	ctx, err := manager.Load(c.Request().Context(), "")
	require.NoError(t, err)
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set(sessionManagerKey, manager)
}
