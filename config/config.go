package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	Session   SessionConfig   `envPrefix:"SESSION_"`
	CSRF      CSRFConfig      `envPrefix:"CSRF_"`
	Guard     GuardConfig     `envPrefix:"GUARD_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	Mail      MailConfig      `envPrefix:"MAIL_"`
	Support   SupportConfig   `envPrefix:"SUPPORT_"`
	RateLimit RateLimitConfig `envPrefix:"RATELIMIT_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"NehaNotes"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Host           string   `env:"HOST" envDefault:"localhost"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"nehanotes.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type SessionConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Store    string        `env:"STORE" envDefault:"memory"`
	Name     string        `env:"NAME" envDefault:"nehanotes_session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"168h"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN"`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
}

// CSRFConfig protects form and JSON posts made with the session cookie.
type CSRFConfig struct {
	Enabled        bool   `env:"ENABLED" envDefault:"true"`
	TokenLookup    string `env:"TOKEN_LOOKUP" envDefault:"header:X-CSRF-Token,form:_csrf"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"nehanotes_csrf"`
	CookieMaxAge   int    `env:"COOKIE_MAX_AGE" envDefault:"86400"`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

// GuardConfig controls single-device enforcement.
type GuardConfig struct {
	Enabled     bool          `env:"ENABLED" envDefault:"true"`
	Interval    time.Duration `env:"INTERVAL" envDefault:"15s"`
	RecordStore string        `env:"RECORD_STORE" envDefault:"database"`
	LoginURL    string        `env:"LOGIN_URL" envDefault:"/login"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"nehanotes:"`
}

type AuthConfig struct {
	MinLength           int           `env:"MIN_LENGTH" envDefault:"8"`
	BcryptCost          int           `env:"BCRYPT_COST" envDefault:"10"`
	PasswordResetExpiry time.Duration `env:"PASSWORD_RESET_EXPIRY" envDefault:"1h"`
}

type MailConfig struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME" envDefault:"NehaNotes"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
}

type SupportConfig struct {
	Inbox string `env:"INBOX"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Store   string        `env:"STORE" envDefault:"memory"`
	Rate    int           `env:"RATE" envDefault:"10"`
	Period  time.Duration `env:"PERIOD" envDefault:"1m"`
}

type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

func LoadConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Guard.Enabled && c.Guard.Interval <= 0 {
		return fmt.Errorf("guard interval must be positive, got %s", c.Guard.Interval)
	}

	switch c.Guard.RecordStore {
	case "database", "redis":
	default:
		return fmt.Errorf("unsupported guard record store: %s (supported: database, redis)", c.Guard.RecordStore)
	}

	switch c.RateLimit.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported rate limit store: %s (supported: memory, redis)", c.RateLimit.Store)
	}

	if c.Mail.Enabled && c.Mail.FromAddress == "" {
		return fmt.Errorf("MAIL_FROM_ADDRESS is required when mail is enabled")
	}

	return nil
}
