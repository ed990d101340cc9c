package accounts

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Store keeps each account's active device token on its users row.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetActiveDeviceToken returns nil when no device holds authority, including
// when the account no longer exists, so devices of a deleted account are kicked.
func (s *Store) GetActiveDeviceToken(ctx context.Context, accountID string) (*string, error) {
	var user User
	err := s.db.WithContext(ctx).
		Select("id", "active_device_token").
		First(&user, "id = ?", accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read device token: %w", err)
	}
	return user.ActiveDeviceToken, nil
}

func (s *Store) SetActiveDeviceToken(ctx context.Context, accountID, token string) error {
	return s.update(ctx, accountID, "active_device_token", token)
}

// ClearActiveDeviceToken revokes authority from every device of the account.
func (s *Store) ClearActiveDeviceToken(ctx context.Context, accountID string) error {
	return s.update(ctx, accountID, "active_device_token", gorm.Expr("NULL"))
}

func (s *Store) SetActiveDeviceLabel(ctx context.Context, accountID, label string) error {
	return s.update(ctx, accountID, "active_device_label", label)
}

func (s *Store) update(ctx context.Context, accountID, column string, value any) error {
	result := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", accountID).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// MySQL reports changed rows, so writing the current value affects none.
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	if count == 0 {
		return ErrAccountNotFound
	}
	return nil
}
