package devicestore

import (
	"context"
	"fmt"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/deviceguard"
	"github.com/NehaTanti-afk/Neha-Notes/services/accounts"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Records is a record store that can also revoke every device of an account.
type Records interface {
	deviceguard.RecordStore
	ClearActiveDeviceToken(ctx context.Context, accountID string) error
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type recordsParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Accounts  *accounts.Store
	Logger    *logging.Service
}

// ProvideRecords selects the device token store named by GUARD_RECORD_STORE.
func ProvideRecords(p recordsParams) (Records, error) {
	switch p.Config.Guard.RecordStore {
	case "database":
		return p.Accounts, nil
	case "redis":
		rdb := NewRedisClient(p.Config.Redis)
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := rdb.Ping(ctx).Err(); err != nil {
					p.Logger.Error("failed to connect to redis", zap.String("addr", p.Config.Redis.Addr), zap.Error(err))
					return fmt.Errorf("failed to connect to redis: %w", err)
				}
				p.Logger.Info("connected to redis", zap.String("addr", p.Config.Redis.Addr))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return rdb.Close()
			},
		})
		return New(rdb, p.Config.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported guard record store: %s", p.Config.Guard.RecordStore)
	}
}

var Module = fx.Options(
	fx.Provide(ProvideRecords),
	fx.Provide(
		func(r Records) deviceguard.RecordStore { return r },
		func(r Records) accounts.DeviceRevoker { return r },
	),
)
