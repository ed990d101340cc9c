package accounts

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinLength {
		s.logger.Debug("password validation failed: insufficient length",
			zap.Int("length", len(password)),
			zap.Int("min_required", s.config.Auth.MinLength))
		return fmt.Errorf("%w: password must be at least %d characters", ErrWeakPassword, s.config.Auth.MinLength)
	}
	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
