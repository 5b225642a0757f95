package config_test

import (
	"os"
	"testing"
	"time"

	"bookheaven/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the duration of the test, like
// testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, config.StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "console", cfg.Logger.Encoding)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.True(t, cfg.SeedDemo)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MONGO_DATABASE", "books")
	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SEED_DEMO", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, config.StoreMongo, cfg.Store.Driver)
	assert.Equal(t, "books", cfg.Store.MongoDatabase)
	assert.Equal(t, "json", cfg.Logger.Encoding)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.False(t, cfg.SeedDemo)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := config.Load()
	assert.ErrorContains(t, err, "unsupported STORE_DRIVER")
}
