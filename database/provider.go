package database

import (
	"fmt"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type ModelsOption struct {
	models []any
}

func WithModels(models ...any) *ModelsOption {
	return &ModelsOption{models: models}
}

func (o *ModelsOption) Models() []any {
	if o == nil {
		return nil
	}
	return o.models
}

func ProvideDatabase(cfg config.Config, modelsOpt *ModelsOption, logger *logging.Service) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.Database.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres, mysql)", cfg.Database.Driver)
	}

	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if cfg.Log.Level == "debug" {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		if logger != nil {
			logger.Error("failed to connect to database",
				zap.String("driver", cfg.Database.Driver),
				zap.Error(err))
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	models := modelsOpt.Models()
	if cfg.Database.AutoMigrate && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
		}
		if logger != nil {
			logger.Info("database migrated", zap.Int("models", len(models)))
		}
	}

	if logger != nil {
		logger.Info("database connected", zap.String("driver", cfg.Database.Driver))
	}

	return db, nil
}
