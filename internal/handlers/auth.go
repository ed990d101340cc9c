package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/NehaTanti-afk/Neha-Notes/deviceguard"
	"github.com/NehaTanti-afk/Neha-Notes/services/accounts"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	deviceBannerMessage = "You were signed in on another device. Please sign in again to continue."
	deviceBannerHint    = "Only one device per account is allowed at a time."
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

type emailRequest struct {
	Email string `json:"email" form:"email"`
}

type resetRequest struct {
	Token    string `json:"token" form:"token"`
	Password string `json:"password" form:"password"`
}

type deviceBanner struct {
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

// LoginPage reports what the sign-in page shows. The device banner appears
// when the URL says so or a kick left its note in the session; the note is
// consumed either way.
func (h *Handlers) LoginPage(c echo.Context) error {
	note := session.PopNote(c, deviceguard.LogoutReasonKey)

	resp := map[string]any{
		"flash": session.PopFlash(c),
		"error": c.QueryParam("error"),
		"email": c.QueryParam("email"),
		"next":  safeNext(c.QueryParam("next")),
	}
	if c.QueryParam("reason") == deviceguard.ReasonDevice || note == deviceguard.ReasonDevice {
		resp["device_banner"] = deviceBanner{Message: deviceBannerMessage, Hint: deviceBannerHint}
	}

	return c.JSON(http.StatusOK, withCSRF(c, resp))
}

func (h *Handlers) SignupPage(c echo.Context) error {
	return c.JSON(http.StatusOK, withCSRF(c, map[string]any{
		"error": c.QueryParam("error"),
		"email": c.QueryParam("email"),
		"next":  safeNext(c.QueryParam("next")),
	}))
}

func (h *Handlers) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Email and password are required")
	}

	ctx := c.Request().Context()
	user, err := h.accounts.SignIn(ctx, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, accounts.ErrInvalidEmail), errors.Is(err, accounts.ErrEmailRequired):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Please enter a valid email address.")
	case errors.Is(err, accounts.ErrAccountNotFound):
		params := url.Values{}
		params.Set("error", "No account found with this email. Please create one.")
		params.Set("email", accounts.NormalizeEmail(req.Email))
		if next := safeNext(req.Next); next != DashboardPath {
			params.Set("next", next)
		}
		return c.JSON(http.StatusNotFound, map[string]string{
			"error":    "No account found with this email.",
			"redirect": "/signup?" + params.Encode(),
		})
	case errors.Is(err, accounts.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect password. Please try again.")
	default:
		h.logger.Error("sign-in failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Sign-in failed. Please try again.")
	}

	if err := h.startSession(c, user.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":     user,
		"redirect": safeNext(req.Next),
	})
}

func (h *Handlers) Signup(c echo.Context) error {
	var req accounts.SignUpInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	user, err := h.accounts.SignUp(c.Request().Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, accounts.ErrEmailTaken):
		params := url.Values{}
		params.Set("error", "You already have an account. Please sign in.")
		params.Set("email", accounts.NormalizeEmail(req.Email))
		return c.JSON(http.StatusConflict, map[string]string{
			"error":    err.Error(),
			"redirect": "/login?" + params.Encode(),
		})
	case errors.Is(err, accounts.ErrInvalidEmail),
		errors.Is(err, accounts.ErrEmailRequired),
		errors.Is(err, accounts.ErrNameRequired),
		errors.Is(err, accounts.ErrWeakPassword):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("sign-up failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Sign-up failed. Please try again.")
	}

	if err := h.startSession(c, user.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"user":     user,
		"redirect": DashboardPath,
	})
}

// startSession signs the browser in and makes it the account's only device.
// A failed publish leaves the browser signed in but unguarded.
func (h *Handlers) startSession(c echo.Context, accountID string) error {
	if err := session.Login(c, accountID); err != nil {
		h.logger.Error("failed to start session", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Sign-in failed. Please try again.")
	}

	ctx := c.Request().Context()
	if _, err := h.tokens().Publish(ctx, accountID); err != nil {
		return nil
	}

	h.recordDeviceLabel(ctx, accountID, c.Request().UserAgent())
	return nil
}

func (h *Handlers) recordDeviceLabel(ctx context.Context, accountID, userAgent string) {
	if h.labels == nil {
		return
	}
	if err := h.labels.SetActiveDeviceLabel(ctx, accountID, session.DeviceLabel(userAgent)); err != nil {
		h.logger.Warn("failed to record device label", zap.String("account_id", accountID), zap.Error(err))
	}
}

func (h *Handlers) tokens() *deviceguard.TokenStore {
	return deviceguard.NewTokenStore(h.records, session.NewDeviceCache(h.manager), h.logger, h.metrics)
}

func (h *Handlers) Logout(c echo.Context) error {
	if err := h.tokens().Forget(c.Request().Context()); err != nil {
		h.logger.Warn("failed to forget device token", zap.Error(err))
	}
	if err := session.Logout(c); err != nil {
		h.logger.Error("failed to destroy session", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Sign-out failed")
	}
	return c.Redirect(http.StatusSeeOther, h.config.Guard.LoginURL)
}

// CheckEmail reports whether an account exists. Lookup failures answer
// exists=null so the sign-in form can fall back to "incorrect password".
func (h *Handlers) CheckEmail(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"exists": nil})
	}

	email := accounts.NormalizeEmail(req.Email)
	if email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email is required"})
	}

	exists, err := h.accounts.EmailExists(c.Request().Context(), email)
	if err != nil {
		h.logger.Error("email lookup failed", zap.Error(err))
		return c.JSON(http.StatusOK, map[string]any{"exists": nil})
	}

	return c.JSON(http.StatusOK, map[string]any{"exists": exists})
}

func (h *Handlers) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	err := h.accounts.RequestPasswordReset(c.Request().Context(), req.Email)
	switch {
	case err == nil:
	case errors.Is(err, accounts.ErrInvalidEmail), errors.Is(err, accounts.ErrEmailRequired):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Please enter a valid email address.")
	case errors.Is(err, accounts.ErrMailDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Password reset is not available right now.")
	default:
		h.logger.Error("password reset request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not send the reset email. Please try again.")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "If an account exists for that email, a reset link has been sent.",
	})
}

func (h *Handlers) ResetPassword(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	err := h.accounts.ResetPassword(c.Request().Context(), req.Token, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, accounts.ErrWeakPassword):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, accounts.ErrResetTokenInvalid),
		errors.Is(err, accounts.ErrResetTokenExpired),
		errors.Is(err, accounts.ErrResetTokenUsed):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("password reset failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Password reset failed. Please try again.")
	}

	session.SetFlashSuccess(c, "Password updated. Please sign in with your new password.")
	return c.JSON(http.StatusOK, map[string]string{"redirect": h.config.Guard.LoginURL})
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return DashboardPath
	}
	return next
}
