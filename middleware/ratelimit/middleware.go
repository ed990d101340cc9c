package ratelimit

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CountingMode string

const (
	// CountAll counts every request.
	CountAll CountingMode = "all"
	// CountFailures only counts responses with status 400 and above, such as
	// rejected sign-in attempts.
	CountFailures CountingMode = "failures"
)

type Config struct {
	Store          Store
	Rate           int
	Period         time.Duration
	CountMode      CountingMode
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
	Logger         *logging.Service
}

// Middleware limits requests per key. When the store cannot be reached the
// request is let through.
func Middleware(cfg *Config) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = DefaultKeyGenerator
	}
	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}
	if cfg.CountMode == "" {
		cfg.CountMode = CountAll
	}
	logger := cfg.Logger.Named("ratelimit")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := cfg.KeyGenerator(c)

			count, resetTime, err := cfg.Store.Get(ctx, key)
			if err != nil {
				logger.Warn("rate limit store unavailable", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			if count >= cfg.Rate {
				setHeaders(c, cfg.Rate, 0, resetTime)
				return cfg.OnLimitReached(c)
			}

			if cfg.CountMode == CountAll {
				count, resetTime, err = cfg.Store.Increment(ctx, key, cfg.Period)
				if err != nil {
					logger.Warn("rate limit store unavailable", zap.String("key", key), zap.Error(err))
					return next(c)
				}
				setHeaders(c, cfg.Rate, cfg.Rate-count, resetTime)
				return next(c)
			}

			if resetTime.IsZero() {
				resetTime = time.Now().Add(cfg.Period)
			}
			setHeaders(c, cfg.Rate, cfg.Rate-count, resetTime)

			handlerErr := next(c)

			if responseStatus(c, handlerErr) >= http.StatusBadRequest {
				if _, _, err := cfg.Store.Increment(ctx, key, cfg.Period); err != nil {
					logger.Warn("failed to count failed request", zap.String("key", key), zap.Error(err))
				}
			}

			return handlerErr
		}
	}
}

func setHeaders(c echo.Context, rate, remaining int, resetTime time.Time) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
}

// responseStatus is the status the client will see. A returned error has not
// been written yet, so its code wins.
func responseStatus(c echo.Context, err error) int {
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr.Code
		}
		return http.StatusInternalServerError
	}
	return c.Response().Status
}

// DefaultKeyGenerator keys on route and client address, so each limited
// route has its own budget.
func DefaultKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()
	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}
	return "rate_limit:" + c.Path() + ":" + realIP
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts. Please wait a moment and try again.")
}
