package session

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type contextKey string

const sessionManagerKey = "session_manager"

const managerContextKey contextKey = "session_manager"

// Middleware loads the session for the request and commits it once the
// handler has written its response. Requests to skipPaths are passed through
// untouched; long-lived connections address their session with Stored.
func Middleware(manager *Manager, skipPaths ...string) echo.MiddlewareFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if manager == nil || skip[c.Path()] {
				return next(c)
			}

			c.Set(sessionManagerKey, manager)

			var handlerErr error

			handler := manager.SessionManager.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), managerContextKey, manager)
				c.SetRequest(r.WithContext(ctx))
				c.Response().Writer = w
				handlerErr = next(c)
			}))

			rw := &responseWriterWrapper{
				ResponseWriter: c.Response().Writer,
				echo:           c.Response(),
			}
			handler.ServeHTTP(rw, c.Request())
			return handlerErr
		}
	}
}

// responseWriterWrapper keeps echo's recorded status in step with what scs writes.
type responseWriterWrapper struct {
	http.ResponseWriter
	echo *echo.Response
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if w.echo.Status == 0 {
		w.echo.Status = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func GetManager(c echo.Context) *Manager {
	if manager, ok := c.Get(sessionManagerKey).(*Manager); ok {
		return manager
	}
	return nil
}

func GetManagerFromContext(ctx context.Context) *Manager {
	if manager, ok := ctx.Value(managerContextKey).(*Manager); ok {
		return manager
	}
	return nil
}
