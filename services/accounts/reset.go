package accounts

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func generateResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// RequestPasswordReset mails a reset link when the account exists. An unknown
// e-mail is not an error so the endpoint does not confirm which addresses
// have accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if s.mailer == nil {
		return ErrMailDisabled
	}

	var user User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	resetToken := &PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.config.Auth.PasswordResetExpiry),
	}
	if err := s.db.WithContext(ctx).Create(resetToken).Error; err != nil {
		return fmt.Errorf("failed to create password reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/auth/reset-password?token=%s", s.config.App.URL, url.QueryEscape(token))
	body := fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password for your %s account. "+
		"The link expires in %s.\n\n%s\n\nIf you did not ask for this, you can ignore this e-mail.\n",
		user.Name, s.config.App.Name, s.config.Auth.PasswordResetExpiry, resetURL)

	if err := s.mailer.SendPlain(ctx, []string{user.Email}, "Reset your password", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	s.logger.Info("password reset email sent", zap.String("account_id", user.ID))
	return nil
}

// ResetPassword sets a new password and clears the active device token, which
// signs the account out on every device.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	var accountID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resetToken PasswordResetToken
		if err := tx.Where("token = ?", token).First(&resetToken).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResetTokenInvalid
			}
			return fmt.Errorf("failed to validate password reset token: %w", err)
		}

		if resetToken.UsedAt != nil {
			return ErrResetTokenUsed
		}
		now := time.Now()
		if now.After(resetToken.ExpiresAt) {
			return ErrResetTokenExpired
		}

		result := tx.Model(&User{}).Where("id = ?", resetToken.UserID).Update("password_hash", hash)
		if result.Error != nil {
			return fmt.Errorf("failed to update password: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrResetTokenInvalid
		}

		if err := tx.Model(&resetToken).Update("used_at", now).Error; err != nil {
			return fmt.Errorf("failed to mark password reset token as used: %w", err)
		}

		accountID = resetToken.UserID
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("password reset completed", zap.String("account_id", accountID))

	if err := s.devices.ClearActiveDeviceToken(ctx, accountID); err != nil {
		// The password is already changed; other devices stay signed in until
		// their sessions expire.
		s.logger.Warn("failed to revoke devices after password reset",
			zap.String("account_id", accountID), zap.Error(err))
	}
	return nil
}
