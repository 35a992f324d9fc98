package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("AUTO_ARCHIVE_AFTER_DAYS", "")
	t.Setenv("DB_MAX_CONNS", "")
	t.Setenv("DB_CONNECT_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "sanctuary:auth", cfg.Redis.AuthChannel)
	assert.Equal(t, 90, cfg.AutoArchive.AfterDays)
	assert.NotEmpty(t, cfg.Local.DeviceID)
	assert.Equal(t, 5, cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("DB_MAX_CONNS", "12")
	t.Setenv("DB_CONNECT_TIMEOUT", "1500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Database.Enabled())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 12, cfg.Database.MaxConns)
	assert.Equal(t, 1500*time.Millisecond, cfg.Database.ConnectTimeout)
}

func TestValidate(t *testing.T) {
	t.Run("non-positive archive window", func(t *testing.T) {
		t.Setenv("AUTO_ARCHIVE_AFTER_DAYS", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("empty data dir", func(t *testing.T) {
		cfg := &Config{Server: ServerConfig{Port: "8080"}, AutoArchive: AutoArchiveConfig{AfterDays: 1}}
		assert.EqualError(t, cfg.Validate(), "LOCAL_DATA_DIR is required")
	})
}

func TestShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	assert.Equal(t, 3*time.Second, ShutdownTimeout())

	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	assert.Equal(t, 10*time.Second, ShutdownTimeout())
}
