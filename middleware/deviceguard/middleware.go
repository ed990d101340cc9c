package deviceguard

import (
	"net/http"
	"strings"

	"github.com/NehaTanti-afk/Neha-Notes/deviceguard"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const trigger = "request"

type Config struct {
	Records  deviceguard.RecordStore
	LoginURL string
	Logger   *logging.Service
	Metrics  *deviceguard.Metrics
}

// KickedURL is where a superseded browser is sent.
func KickedURL(loginURL string) string {
	return loginURL + "?reason=" + deviceguard.ReasonDevice
}

// Middleware validates the device token of signed-in sessions on every
// request. A superseded session is signed out, keeps the logout reason for the
// sign-in page and is redirected there; /api/ requests get a 401 instead. A
// failed record lookup lets the request through.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.LoginURL == "" {
		cfg.LoginURL = "/login"
	}
	logger := cfg.Logger.Named("device_guard")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			manager := session.GetManager(c)
			if manager == nil || !session.IsAuthenticated(c) {
				return next(c)
			}

			ctx := c.Request().Context()
			accountID := session.AccountID(c)

			remote, err := cfg.Records.GetActiveDeviceToken(ctx, accountID)
			if err != nil {
				logger.Warn("device token fetch failed, request allowed",
					zap.String("account_id", accountID),
					zap.Error(err))
				cfg.Metrics.ObserveCheck(trigger, deviceguard.OutcomeInconclusive)
				return next(c)
			}

			cache := session.NewDeviceCache(manager)
			local, _ := cache.Get(ctx, deviceguard.DeviceTokenKey)

			if deviceguard.Validate(remote, local) == deviceguard.Keep {
				cfg.Metrics.ObserveCheck(trigger, deviceguard.OutcomeKeep)
				return next(c)
			}

			kickout := deviceguard.NewKickout(
				cache,
				session.NewFlashNotes(manager),
				session.RequestSignOut{Manager: manager},
				logger.With(zap.String("account_id", accountID)),
				cfg.Metrics,
			)
			kickout.Fire(ctx)
			cfg.Metrics.ObserveCheck(trigger, deviceguard.OutcomeKick)

			logger.Info("session superseded by another device, signed out",
				zap.String("account_id", accountID),
				zap.String("path", c.Request().URL.Path))

			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":    "Signed out because this account signed in on another device",
					"reason":   deviceguard.ReasonDevice,
					"redirect": KickedURL(cfg.LoginURL),
				})
			}
			return c.Redirect(http.StatusFound, KickedURL(cfg.LoginURL))
		}
	}
}
