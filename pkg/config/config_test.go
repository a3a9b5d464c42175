package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("VALIDATE_WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 4, cfg.Validate.Workers)
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.Equal(t, time.Hour, cfg.Database.MaxConnLifetime)

	// Persistence stays optional.
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("VALIDATE_WORKERS", "8")
	t.Setenv("DB_MAX_CONN_LIFETIME", "30m")
	t.Setenv("SCHEDULE_SNAPSHOT_PATH", "/data/positions.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Validate.Workers)
	assert.Equal(t, 30*time.Minute, cfg.Database.MaxConnLifetime)
	assert.Equal(t, "/data/positions.csv", cfg.Schedule.SnapshotPath)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("unknown environment", func(t *testing.T) {
		t.Setenv("ENV", "qa")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-positive workers", func(t *testing.T) {
		t.Setenv("ENV", "development")
		t.Setenv("VALIDATE_WORKERS", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed int falls back to default", func(t *testing.T) {
		t.Setenv("ENV", "development")
		t.Setenv("VALIDATE_WORKERS", "many")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Validate.Workers)
	})

	t.Run("malformed duration falls back to default", func(t *testing.T) {
		t.Setenv("ENV", "development")
		t.Setenv("VALIDATE_WORKERS", "")
		t.Setenv("DB_MAX_CONN_LIFETIME", "soon")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, time.Hour, cfg.Database.MaxConnLifetime)
	})
}
