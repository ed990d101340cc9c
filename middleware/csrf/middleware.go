package csrf

import (
	"net/http"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const contextKey = "csrf"

// Middleware issues a token cookie on every request and rejects unsafe
// methods whose header or form token does not match it. skipPaths are exempt.
func Middleware(cfg *config.CSRFConfig, skipPaths ...string) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			return skip[c.Request().URL.Path]
		},
		TokenLookup:    cfg.TokenLookup,
		ContextKey:     contextKey,
		CookieName:     cfg.CookieName,
		CookiePath:     "/",
		CookieMaxAge:   cfg.CookieMaxAge,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: parseSameSite(cfg.CookieSameSite),
	})
}

func parseSameSite(value string) http.SameSite {
	switch value {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// GetToken returns the token the client must echo back, or "" when CSRF
// protection is off.
func GetToken(c echo.Context) string {
	token, _ := c.Get(contextKey).(string)
	return token
}
