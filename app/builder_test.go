package app

import (
	"path/filepath"
	"testing"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/NehaTanti-afk/Neha-Notes/testutils"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func createTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := testutils.GetTestConfig()
	cfg.Server = config.ServerConfig{Host: "127.0.0.1", Port: "0"}
	cfg.Log = config.LogConfig{Level: "error", Format: "json", Output: "stderr"}
	cfg.Database.DSN = filepath.Join(t.TempDir(), "nehanotes.db")
	cfg.Database.AutoMigrate = true
	return cfg
}

func TestNewApp(t *testing.T) {
	builder := NewApp()

	assert.NotNil(t, builder)
	assert.Nil(t, builder.config)
	assert.Empty(t, builder.fxOptions)
	assert.Empty(t, builder.errors)
}

func TestAppBuilder_WithConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := createTestConfig(t)
		builder := NewApp()

		result := builder.WithConfig(cfg)

		assert.Same(t, builder, result)
		assert.Same(t, cfg, builder.config)
	})

	t.Run("nil config", func(t *testing.T) {
		builder := NewApp()

		builder.WithConfig(nil)

		assert.Nil(t, builder.config)
		require.Len(t, builder.errors, 1)
		assert.Contains(t, builder.errors[0].Error(), "config cannot be nil")

		_, err := builder.Build()
		assert.ErrorContains(t, err, "config cannot be nil")
	})
}

func TestAppBuilder_Options(t *testing.T) {
	opts := &session.Options{Store: session.NewMemoryStore()}
	clock := clockwork.NewFakeClock()

	builder := NewApp().
		WithSessionOptions(opts).
		WithClock(clock).
		WithFxOptions(fx.Invoke(func() {}))

	assert.Same(t, opts, builder.sessionOpts)
	assert.Equal(t, clock, builder.clock)
	assert.Len(t, builder.fxOptions, 1)

	builder.WithClock(nil)
	assert.Len(t, builder.errors, 1)
}

func TestAppBuilder_Build_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "unknown record store",
			mutate: func(c *config.Config) { c.Guard.RecordStore = "memcached" },
			want:   "unsupported guard record store",
		},
		{
			name:   "non-positive guard interval",
			mutate: func(c *config.Config) { c.Guard.Interval = 0 },
			want:   "guard interval must be positive",
		},
		{
			name:   "sessions disabled",
			mutate: func(c *config.Config) { c.Session.Enabled = false },
			want:   "sessions must be enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig(t)
			tt.mutate(cfg)

			_, err := NewApp().WithConfig(cfg).Build()

			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestAppBuilder_Build_WiringError(t *testing.T) {
	cfg := createTestConfig(t)
	cfg.Database.Driver = "oracle"

	_, err := NewApp().WithConfig(cfg).Build()

	assert.ErrorContains(t, err, "failed to wire application")
}

func TestModels(t *testing.T) {
	db := testutils.SetupTestDB(t, Models()...)

	for _, table := range []string{"users", "password_reset_tokens", "subjects", "papers", "support_tickets"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
