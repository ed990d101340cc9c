package server

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewProvider() fx.Option {
	return fx.Options(
		fx.Provide(New),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					srv.logger.Error("server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.echo.Shutdown(ctx)
}
