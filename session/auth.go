package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	UserIDKey        = "_user_id"
	AuthenticatedKey = "_authenticated"
)

// Login binds accountID to the session under a fresh token.
func Login(c echo.Context, accountID string) error {
	manager := GetManager(c)
	if manager == nil {
		return fmt.Errorf("sessions are not enabled")
	}
	ctx := c.Request().Context()
	if err := manager.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}
	manager.Put(ctx, UserIDKey, accountID)
	manager.Put(ctx, AuthenticatedKey, true)
	return nil
}

// Logout destroys the whole session, including any pending flash.
func Logout(c echo.Context) error {
	manager := GetManager(c)
	if manager == nil {
		return nil
	}
	return manager.Destroy(c.Request().Context())
}

// SignOut drops the identity from the session but keeps the rest of its data,
// so a note left for the next page survives.
func SignOut(ctx context.Context, manager *Manager) error {
	if manager == nil {
		return nil
	}
	manager.Remove(ctx, UserIDKey)
	manager.Remove(ctx, AuthenticatedKey)
	return manager.RenewToken(ctx)
}

// RequestSignOut adapts SignOut to the request currently being served.
type RequestSignOut struct {
	Manager *Manager
}

func (s RequestSignOut) SignOut(ctx context.Context) error {
	return SignOut(ctx, s.Manager)
}

func AccountID(c echo.Context) string {
	manager := GetManager(c)
	if manager == nil {
		return ""
	}
	return manager.GetString(c.Request().Context(), UserIDKey)
}

func IsAuthenticated(c echo.Context) bool {
	manager := GetManager(c)
	if manager == nil {
		return false
	}
	ctx := c.Request().Context()
	return manager.GetBool(ctx, AuthenticatedKey) && manager.GetString(ctx, UserIDKey) != ""
}

func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			return next(c)
		}
	}
}

func RequireAuthWeb(loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return c.Redirect(http.StatusFound, loginURL)
			}
			return next(c)
		}
	}
}

// RedirectIfAuthenticated sends signed-in users away from guest-only pages.
func RedirectIfAuthenticated(target string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsAuthenticated(c) {
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}
