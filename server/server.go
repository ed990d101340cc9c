package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// quietPaths are polled often enough that logging them would drown the rest.
var quietPaths = []string{"/healthz", "/ws/guard"}

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *logging.Service
}

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if extractor := ipExtractor(cfg.Server.TrustedProxies, logger); extractor != nil {
		e.IPExtractor = extractor
	}

	skip := append([]string{cfg.Metrics.Path}, quietPaths...)
	e.Use(middleware.Recover())
	e.Use(logging.RequestLogger(logger.Named("http"), skip...))

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

// ipExtractor trusts X-Forwarded-For only from the configured proxy ranges.
// Rate limit keys depend on it behind a load balancer.
func ipExtractor(proxies []string, logger *logging.Service) echo.IPExtractor {
	if len(proxies) == 0 {
		return nil
	}

	opts := make([]echo.TrustOption, 0, len(proxies))
	for _, cidr := range proxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warn("ignoring invalid trusted proxy", zap.String("cidr", cidr), zap.Error(err))
			continue
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Server.Host, s.cfg.Server.Port)
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.Addr()))

	if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
