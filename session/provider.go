package session

import (
	"fmt"
	"net/http"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/alexedwards/scs/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Manager struct {
	*scs.SessionManager
	config config.SessionConfig
}

type Options struct {
	Store scs.Store
}

func ProvideSessionManager(cfg *config.Config, opts *Options, db *gorm.DB, logger *logging.Service) (*Manager, error) {
	if !cfg.Session.Enabled {
		return nil, nil
	}

	sessionManager := scs.New()

	var store scs.Store
	var err error

	if opts != nil && opts.Store != nil {
		store = opts.Store
	} else {
		switch cfg.Session.Store {
		case "memory":
			store = NewMemoryStore()
		case "database":
			if db == nil {
				return nil, fmt.Errorf("database session store requires a database")
			}
			store, err = NewDatabaseStore(db)
			if err != nil {
				return nil, fmt.Errorf("failed to create database session store: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported session store: %s", cfg.Session.Store)
		}
	}

	sessionManager.Store = store
	sessionManager.Lifetime = cfg.Session.MaxAge
	sessionManager.IdleTimeout = cfg.Session.MaxAge
	sessionManager.Cookie.Name = cfg.Session.Name
	sessionManager.Cookie.Path = cfg.Session.Path
	sessionManager.Cookie.Domain = cfg.Session.Domain
	sessionManager.Cookie.Secure = cfg.Session.Secure
	sessionManager.Cookie.HttpOnly = cfg.Session.HttpOnly
	sessionManager.Cookie.SameSite = parseSameSite(cfg.Session.SameSite)

	sessionManager.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("session load failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	logger.Info("session manager initialised",
		zap.String("store", cfg.Session.Store),
		zap.Duration("max_age", cfg.Session.MaxAge))

	return &Manager{
		SessionManager: sessionManager,
		config:         cfg.Session,
	}, nil
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

type managerParams struct {
	fx.In
	Config  *config.Config
	Options *Options         `optional:"true"`
	DB      *gorm.DB         `optional:"true"`
	Logger  *logging.Service `optional:"true"`
}

func provideManager(p managerParams) (*Manager, error) {
	return ProvideSessionManager(p.Config, p.Options, p.DB, p.Logger)
}

var Module = fx.Module("session",
	fx.Provide(provideManager),
)
