// Package devicestore keeps active device tokens in redis for deployments
// where the users table is not the fastest shared store.
package devicestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

type Store struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(accountID string) string {
	return s.prefix + "device_token:" + accountID
}

// GetActiveDeviceToken returns nil when the key is missing.
func (s *Store) GetActiveDeviceToken(ctx context.Context, accountID string) (*string, error) {
	token, err := s.rdb.Get(ctx, s.key(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read device token: %w", err)
	}
	return &token, nil
}

func (s *Store) SetActiveDeviceToken(ctx context.Context, accountID, token string) error {
	if err := s.rdb.Set(ctx, s.key(accountID), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to write device token: %w", err)
	}
	return nil
}

func (s *Store) ClearActiveDeviceToken(ctx context.Context, accountID string) error {
	if err := s.rdb.Del(ctx, s.key(accountID)).Err(); err != nil {
		return fmt.Errorf("failed to clear device token: %w", err)
	}
	return nil
}
