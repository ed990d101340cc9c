package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/NehaTanti-afk/Neha-Notes/middleware/csrf"
	"github.com/NehaTanti-afk/Neha-Notes/services/accounts"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (h *Handlers) currentUser(c echo.Context) (*accounts.User, error) {
	user, err := h.accounts.ByID(c.Request().Context(), session.AccountID(c))
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}
		h.logger.Error("failed to load current user", zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load account")
	}
	return user, nil
}

func displayName(user *accounts.User) string {
	if user.Name != "" {
		return user.Name
	}
	if local, _, ok := strings.Cut(user.Email, "@"); ok && local != "" {
		return local
	}
	return "there"
}

// withCSRF adds the token page scripts send back on posts.
func withCSRF(c echo.Context, page map[string]any) map[string]any {
	if token := csrf.GetToken(c); token != "" {
		page["csrf_token"] = token
	}
	return page
}

func (h *Handlers) Dashboard(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	subjects, err := h.content.ListSubjects(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load subjects")
	}

	return c.JSON(http.StatusOK, withCSRF(c, map[string]any{
		"greeting": "Welcome back, " + displayName(user),
		"user":     user,
		"subjects": subjects,
		"flash":    session.PopFlash(c),
		"guard":    GuardSocketPath,
	}))
}

func (h *Handlers) Me(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
