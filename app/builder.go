package app

import (
	"fmt"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/database"
	"github.com/NehaTanti-afk/Neha-Notes/deviceguard"
	"github.com/NehaTanti-afk/Neha-Notes/internal/handlers"
	"github.com/NehaTanti-afk/Neha-Notes/middleware/ratelimit"
	"github.com/NehaTanti-afk/Neha-Notes/server"
	"github.com/NehaTanti-afk/Neha-Notes/services/accounts"
	"github.com/NehaTanti-afk/Neha-Notes/services/content"
	"github.com/NehaTanti-afk/Neha-Notes/services/devicestore"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/NehaTanti-afk/Neha-Notes/services/mail"
	"github.com/NehaTanti-afk/Neha-Notes/services/metrics"
	"github.com/NehaTanti-afk/Neha-Notes/services/support"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

// Models lists every table the application migrates.
func Models() []any {
	models := append([]any{}, accounts.Models()...)
	models = append(models, content.Models()...)
	return append(models, support.Models()...)
}

type AppBuilder struct {
	config      *config.Config
	sessionOpts *session.Options
	clock       clockwork.Clock
	fxOptions   []fx.Option
	errors      []error
}

func NewApp() *AppBuilder {
	return &AppBuilder{
		fxOptions: make([]fx.Option, 0),
		errors:    make([]error, 0),
	}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

// WithSessionOptions overrides the session store picked from SESSION_STORE.
func (b *AppBuilder) WithSessionOptions(opts *session.Options) *AppBuilder {
	b.sessionOpts = opts
	return b
}

// WithClock replaces the clock driving the device guard sockets.
func (b *AppBuilder) WithClock(clock clockwork.Clock) *AppBuilder {
	if clock == nil {
		b.addError("clock cannot be nil")
		return b
	}
	b.clock = clock
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if b.config == nil && len(b.errors) == 0 {
		b.WithAutoConfig()
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	app := &App{config: b.config}

	options := b.buildFxOptions()
	options = append(options, fx.Populate(&app.logger, &app.db, &app.server))

	app.fx = fx.New(options...)
	if err := app.fx.Err(); err != nil {
		return nil, fmt.Errorf("failed to wire application: %w", err)
	}

	return app, nil
}

func (b *AppBuilder) addError(msg string) {
	b.errors = append(b.errors, fmt.Errorf("%s", msg))
}

func (b *AppBuilder) validate() error {
	if len(b.errors) > 0 {
		return fmt.Errorf("configuration errors: %v", b.errors)
	}

	if err := b.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Sign-in state and the per-device token both live in the session.
	if !b.config.Session.Enabled {
		return fmt.Errorf("sessions must be enabled")
	}

	return nil
}

func (b *AppBuilder) buildFxOptions() []fx.Option {
	options := []fx.Option{
		config.NewProvider(b.config),
		fx.Supply(database.WithModels(Models()...)),
		fx.NopLogger,
		logging.Module,
		database.Module,
		session.Module,
		mail.Module,
		accounts.Module,
		devicestore.Module,
		content.Module,
		support.Module,
		ratelimit.Module,
		deviceguard.Module,
		handlers.Module,
		server.NewProvider(),
	}

	if b.sessionOpts != nil {
		options = append(options, fx.Supply(b.sessionOpts))
	}
	if b.clock != nil {
		clock := b.clock
		options = append(options, fx.Provide(func() clockwork.Clock { return clock }))
	}
	if b.config.Metrics.Enabled {
		options = append(options, metrics.Module)
	}

	options = append(options, b.fxOptions...)

	return append(options, fx.Invoke(registerRoutes))
}

func registerRoutes(srv *server.Server, h *handlers.Handlers) {
	h.Register(srv.Echo())
}
