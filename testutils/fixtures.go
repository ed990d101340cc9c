package testutils

import (
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "NehaNotes Test",
			URL:  "http://localhost:8080",
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
		Session: config.SessionConfig{
			Enabled:  true,
			Store:    "memory",
			Name:     "nehanotes_session",
			MaxAge:   time.Hour,
			Path:     "/",
			HttpOnly: true,
			SameSite: "lax",
		},
		Guard: config.GuardConfig{
			Enabled:     true,
			Interval:    15 * time.Second,
			RecordStore: "database",
			LoginURL:    "/login",
		},
		Auth: config.AuthConfig{
			MinLength:           8,
			BcryptCost:          bcrypt.MinCost,
			PasswordResetExpiry: time.Hour,
		},
		Support: config.SupportConfig{
			Inbox: "support@nehanotes.test",
		},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
			Store:   "memory",
			Rate:    10,
			Period:  time.Minute,
		},
		Metrics: config.MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

var TestPasswords = struct {
	Valid    string
	TooShort string
}{
	Valid:    "Password123",
	TooShort: "Pass1",
}

var TestUsers = struct {
	Student struct {
		Name     string
		Email    string
		Password string
	}
}{
	Student: struct {
		Name     string
		Email    string
		Password string
	}{
		Name:     "Test Student",
		Email:    "student@example.com",
		Password: "Password123",
	},
}
