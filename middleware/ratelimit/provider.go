package ratelimit

import (
	"context"
	"fmt"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/devicestore"
	"go.uber.org/fx"
)

// ProvideStore picks the counter backend. The memory store is closed and the
// redis client disconnected when the app stops.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config) (Store, error) {
	switch cfg.RateLimit.Store {
	case "memory":
		store := NewMemoryStore()
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				store.Close()
				return nil
			},
		})
		return store, nil
	case "redis":
		rdb := devicestore.NewRedisClient(cfg.Redis)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return rdb.Close()
			},
		})
		return NewRedisStore(rdb, cfg.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit store: %s", cfg.RateLimit.Store)
	}
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
)
