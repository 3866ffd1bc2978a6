package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/internal/config"
)

func TestGetConfigDefaults(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	cfg := config.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "sitepulse", cfg.AppName)
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, config.SQLiteDatabase, cfg.DatabaseType)
	assert.Equal(t, 604800, cfg.GetTokenTTLSeconds())
	assert.Equal(t, 10000, cfg.ExportMaxEvents)
	assert.NotEmpty(t, cfg.GetDatabasePath())
}

func TestGetConfigEnvOverride(t *testing.T) {
	t.Setenv("SITEPULSE_APP_PORT", "8080")
	t.Setenv("SITEPULSE_ENV", config.Test)
	config.Reset()
	t.Cleanup(config.Reset)

	cfg := config.GetConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.True(t, cfg.IsTest())
	assert.False(t, cfg.IsProduction())
}

func TestConnectionPoolSizing(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      config.Config
		wantOpen int
		wantIdle int
	}{
		{
			name:     "test environment is single connection",
			cfg:      config.Config{Environment: config.Test},
			wantOpen: 1,
			wantIdle: 1,
		},
		{
			name:     "development gets a pool",
			cfg:      config.Config{Environment: config.Development},
			wantOpen: 10,
			wantIdle: 5,
		},
		{
			name:     "explicit settings win",
			cfg:      config.Config{Environment: config.Test, DatabaseMaxOpenConns: 4, DatabaseMaxIdleConns: 2},
			wantOpen: 4,
			wantIdle: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantOpen, tc.cfg.GetMaxOpenConns())
			assert.Equal(t, tc.wantIdle, tc.cfg.GetMaxIdleConns())
		})
	}
}

func TestGetConfigIsCached(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	first := config.GetConfig()
	second := config.GetConfig()
	assert.Same(t, first, second)
}
