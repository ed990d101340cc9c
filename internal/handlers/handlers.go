// Package handlers serves the NehaNotes HTTP routes.
package handlers

import (
	"net/http"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/deviceguard"
	"github.com/NehaTanti-afk/Neha-Notes/middleware/csrf"
	guardmw "github.com/NehaTanti-afk/Neha-Notes/middleware/deviceguard"
	"github.com/NehaTanti-afk/Neha-Notes/middleware/ratelimit"
	"github.com/NehaTanti-afk/Neha-Notes/openapi"
	"github.com/NehaTanti-afk/Neha-Notes/services/accounts"
	"github.com/NehaTanti-afk/Neha-Notes/services/content"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/NehaTanti-afk/Neha-Notes/services/metrics"
	"github.com/NehaTanti-afk/Neha-Notes/services/support"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

const (
	GuardSocketPath = "/ws/guard"
	DashboardPath   = "/dashboard"
)

type Handlers struct {
	config   *config.Config
	manager  *session.Manager
	accounts *accounts.Service
	labels   *accounts.Store
	records  deviceguard.RecordStore
	content  *content.Repository
	support  *support.Service
	limits   ratelimit.Store
	registry *prometheus.Registry
	metrics  *deviceguard.Metrics
	clock    clockwork.Clock
	upgrader websocket.Upgrader
	docs     *openapi.Document
	logger   *logging.Service
}

type Params struct {
	fx.In
	Config   *config.Config
	Manager  *session.Manager
	Accounts *accounts.Service
	Labels   *accounts.Store
	Records  deviceguard.RecordStore
	Content  *content.Repository
	Support  *support.Service
	Limits   ratelimit.Store      `optional:"true"`
	Registry *prometheus.Registry `optional:"true"`
	Metrics  *deviceguard.Metrics `optional:"true"`
	Clock    clockwork.Clock      `optional:"true"`
	Logger   *logging.Service
}

func New(p Params) *Handlers {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Handlers{
		config:   p.Config,
		manager:  p.Manager,
		accounts: p.Accounts,
		labels:   p.Labels,
		records:  p.Records,
		content:  p.Content,
		support:  p.Support,
		limits:   p.Limits,
		registry: p.Registry,
		metrics:  p.Metrics,
		clock:    clock,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		docs:     apiDocument(p.Config),
		logger:   p.Logger.Named("http"),
	}
}

// Register installs the session and device guard middleware and every route.
// The guard websocket is kept out of the session middleware; it reads its
// session directly on each check.
func (h *Handlers) Register(e *echo.Echo) {
	e.Use(session.Middleware(h.manager, GuardSocketPath))
	// Upgrade responses are hijacked, so the socket never gets a token cookie.
	e.Use(csrf.Middleware(&h.config.CSRF, GuardSocketPath))
	if h.config.Guard.Enabled {
		e.Use(guardmw.Middleware(guardmw.Config{
			Records:  h.records,
			LoginURL: h.config.Guard.LoginURL,
			Logger:   h.logger,
			Metrics:  h.metrics,
		}))
	}

	guest := session.RedirectIfAuthenticated(DashboardPath)

	e.GET("/login", h.LoginPage, guest)
	e.POST("/login", h.Login, guest, h.limit(ratelimit.CountFailures))
	e.GET("/signup", h.SignupPage, guest)
	e.POST("/signup", h.Signup, guest, h.limit(ratelimit.CountAll))
	e.POST("/logout", h.Logout)
	e.POST("/forgot-password", h.ForgotPassword, h.limit(ratelimit.CountAll))
	e.POST("/auth/reset-password", h.ResetPassword, h.limit(ratelimit.CountFailures))
	e.GET(DashboardPath, h.Dashboard, session.RequireAuthWeb(h.config.Guard.LoginURL))

	api := e.Group("/api")
	api.POST("/auth/check-email", h.CheckEmail, h.limit(ratelimit.CountAll))
	api.GET("/me", h.Me, session.RequireAuth())
	api.GET("/subjects", h.ListSubjects)
	api.GET("/subjects/:code", h.Subject)
	api.GET("/subjects/:code/papers/:paperId", h.Paper)
	api.POST("/support", h.SubmitTicket, h.limit(ratelimit.CountAll))
	api.GET("/openapi.json", h.docs.JSONHandler())
	api.GET("/openapi.yaml", h.docs.YAMLHandler())

	if h.config.Guard.Enabled {
		e.GET(GuardSocketPath, h.GuardSocket)
	}

	if h.config.Metrics.Enabled && h.registry != nil {
		e.GET(h.config.Metrics.Path, metrics.Handler(h.registry))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (h *Handlers) limit(mode ratelimit.CountingMode) echo.MiddlewareFunc {
	if !h.config.RateLimit.Enabled || h.limits == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return ratelimit.Middleware(&ratelimit.Config{
		Store:     h.limits,
		Rate:      h.config.RateLimit.Rate,
		Period:    h.config.RateLimit.Period,
		CountMode: mode,
		Logger:    h.logger,
	})
}

var Module = fx.Options(
	fx.Provide(New),
)
