package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/server"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	fx     *fx.App
	config *config.Config
	logger *logging.Service
	db     *gorm.DB
	server *server.Server
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

// Run starts the application and blocks until SIGINT, SIGTERM or a fatal
// server error, then stops it gracefully.
func (a *App) Run() error {
	if err := a.Start(context.Background()); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))
	case sig := <-a.fx.Wait():
		a.logger.Info("application asked to stop", zap.Int("exit_code", sig.ExitCode))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.Stop(ctx); err != nil {
		a.logger.Error("failed to stop application gracefully", zap.Error(err))
		return err
	}
	return nil
}

func (a *App) Server() *echo.Echo {
	return a.server.Echo()
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}
