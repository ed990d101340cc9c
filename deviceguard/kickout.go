package deviceguard

import (
	"context"
	"sync/atomic"

	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"go.uber.org/zap"
)

// Kickout ends a superseded session. Only the first Fire does anything.
type Kickout struct {
	fired   atomic.Bool
	cache   Cache
	notes   Notes
	auth    SignOuter
	logger  *logging.Service
	metrics *Metrics
}

func NewKickout(cache Cache, notes Notes, auth SignOuter, logger *logging.Service, metrics *Metrics) *Kickout {
	return &Kickout{
		cache:   cache,
		notes:   notes,
		auth:    auth,
		logger:  logger,
		metrics: metrics,
	}
}

// Fire clears the cached token, leaves the logout reason for the sign-in page,
// then signs out. It reports whether this call performed the kick. Failures of
// the individual steps are logged and never retried.
func (k *Kickout) Fire(ctx context.Context) bool {
	if !k.fired.CompareAndSwap(false, true) {
		return false
	}

	if err := k.cache.Delete(ctx, DeviceTokenKey); err != nil {
		k.logger.Warn("failed to clear cached device token", zap.Error(err))
	}

	if k.notes != nil {
		if err := k.notes.Put(ctx, LogoutReasonKey, ReasonDevice); err != nil {
			k.logger.Warn("failed to record logout reason", zap.Error(err))
		}
	}

	if err := k.auth.SignOut(ctx); err != nil {
		k.logger.Error("sign-out after device kick failed", zap.Error(err))
	}

	k.metrics.kick()
	return true
}

func (k *Kickout) Fired() bool {
	return k.fired.Load()
}
