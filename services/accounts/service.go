package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/NehaTanti-afk/Neha-Notes/services/mail"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired         = errors.New("email is required")
	ErrInvalidEmail          = errors.New("please enter a valid email address")
	ErrNameRequired          = errors.New("name is required")
	ErrEmailTaken            = errors.New("an account with this email already exists")
	ErrAccountNotFound       = errors.New("no account found with this email")
	ErrInvalidCredentials    = errors.New("incorrect password")
	ErrWeakPassword          = errors.New("password does not meet requirements")
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrResetTokenInvalid     = errors.New("invalid or expired password reset token")
	ErrResetTokenExpired     = errors.New("password reset token has expired")
	ErrResetTokenUsed        = errors.New("password reset token has already been used")
	ErrMailDisabled          = errors.New("mail service is not configured")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Mailer sends the plain-text account e-mails.
type Mailer interface {
	SendPlain(ctx context.Context, to []string, subject, body string, opts ...mail.MessageOption) error
}

// DeviceRevoker clears the device holding authority for an account.
type DeviceRevoker interface {
	ClearActiveDeviceToken(ctx context.Context, accountID string) error
}

type Service struct {
	config  *config.Config
	db      *gorm.DB
	mailer  Mailer
	devices DeviceRevoker
	logger  *logging.Service
}

type SignUpInput struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	College  string `json:"college" form:"college"`
	Semester int    `json:"semester" form:"semester"`
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config:  cfg,
		db:      db,
		devices: NewStore(db),
		logger:  logger.Named("accounts"),
	}
}

func (s *Service) SetMailer(mailer Mailer) {
	s.mailer = mailer
}

// SetDeviceRevoker replaces the users-table revoker, for deployments that keep
// device tokens elsewhere.
func (s *Service) SetDeviceRevoker(devices DeviceRevoker) {
	s.devices = devices
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*User, error) {
	email := NormalizeEmail(in.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	exists, err := s.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		College:      strings.TrimSpace(in.College),
		Semester:     in.Semester,
		PasswordHash: hash,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		s.logger.Error("failed to create account", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account created", zap.String("account_id", user.ID))
	return user, nil
}

// SignIn tells a missing account apart from a wrong password so the caller
// can offer sign-up instead.
func (s *Service) SignIn(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	var user User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		s.logger.Debug("sign-in rejected", zap.String("account_id", user.ID))
		return nil, err
	}

	return &user, nil
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("email = ?", NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (s *Service) ByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &user, nil
}
