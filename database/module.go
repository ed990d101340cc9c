package database

import (
	"context"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(ProvideDatabaseFx),
	fx.Invoke(registerClose),
)

func ProvideDatabaseFx(cfg *config.Config, modelsOpt *ModelsOption, logger *logging.Service) (*gorm.DB, error) {
	return ProvideDatabase(*cfg, modelsOpt, logger)
}

func registerClose(lc fx.Lifecycle, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}
