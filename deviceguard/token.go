package deviceguard

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"go.uber.org/zap"
)

const tokenBytes = 32

var ErrAccountIDRequired = errors.New("account id is required")

// GenerateToken returns 32 random bytes as 64 lowercase hex characters.
func GenerateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate device token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// TokenStore issues device tokens at login and publishes them to the account
// record and the local cache.
type TokenStore struct {
	records RecordStore
	cache   Cache
	logger  *logging.Service
	metrics *Metrics
}

func NewTokenStore(records RecordStore, cache Cache, logger *logging.Service, metrics *Metrics) *TokenStore {
	return &TokenStore{
		records: records,
		cache:   cache,
		logger:  logger.Named("device_token"),
		metrics: metrics,
	}
}

// Publish makes a fresh token authoritative for accountID. The record is
// written first; the cache is only written once the record write succeeded, so
// a failed publish leaves this browser unguarded rather than claiming a token
// the server never accepted. Every other device of the account is superseded.
func (s *TokenStore) Publish(ctx context.Context, accountID string) (string, error) {
	if accountID == "" {
		return "", ErrAccountIDRequired
	}

	token, err := GenerateToken()
	if err != nil {
		s.metrics.publish(false)
		return "", err
	}

	if err := s.records.SetActiveDeviceToken(ctx, accountID, token); err != nil {
		s.metrics.publish(false)
		s.logger.Warn("device token not published, session left unguarded",
			zap.String("account_id", accountID),
			zap.Error(err))
		return "", fmt.Errorf("failed to publish device token: %w", err)
	}

	if err := s.cache.Set(ctx, DeviceTokenKey, token); err != nil {
		s.metrics.publish(false)
		s.logger.Warn("device token published but not cached",
			zap.String("account_id", accountID),
			zap.Error(err))
		return "", fmt.Errorf("failed to cache device token: %w", err)
	}

	s.metrics.publish(true)
	s.logger.Info("device token published", zap.String("account_id", accountID))

	return token, nil
}

// Forget drops the cached token on explicit sign-out. The account record keeps
// its value until the next login supersedes it.
func (s *TokenStore) Forget(ctx context.Context) error {
	return s.cache.Delete(ctx, DeviceTokenKey)
}
