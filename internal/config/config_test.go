package config_test

import (
	"testing"
	"time"

	"github.com/gamma-omg/tenwords/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("HTTP_LISTEN_ADDR", ":9090")
	t.Setenv("HTTP_IDLE_TIMEOUT", "70s")
	t.Setenv("HTTP_READ_TIMEOUT", "40s")
	t.Setenv("HTTP_WRITE_TIMEOUT", "50s")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "15s")
	t.Setenv("AUTH_SECRET", "supersecret")
	t.Setenv("DAILY_BATCH_LIMIT", "3")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_MIGRATIONS", "/srv/migrations")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("REDIS_HOST", "cache.example.com")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_PASSWORD", "redispass")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LIST_CACHE_KEYS", "200")
	t.Setenv("LIST_CACHE_COST", "300")
	t.Setenv("LIST_CACHE_TTL", "5s")

	cfg := config.FromEnv()

	assert.Equal(t, "supersecret", cfg.AuthSecret)
	assert.Equal(t, 3, cfg.DailyBatchLimit)
	assert.Equal(t, "db.example.com", cfg.DB.Host)
	assert.Equal(t, "6543", cfg.DB.Port)
	assert.Equal(t, "testuser", cfg.DB.User)
	assert.Equal(t, "testpass", cfg.DB.Password)
	assert.Equal(t, "testdb", cfg.DB.Name)
	assert.Equal(t, "/srv/migrations", cfg.DB.Migrations)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, ":9090", cfg.Http.ListenAddr)
	assert.Equal(t, 70*time.Second, cfg.Http.IdleTimeout)
	assert.Equal(t, 40*time.Second, cfg.Http.ReadTimeout)
	assert.Equal(t, 50*time.Second, cfg.Http.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.Http.ShutdownTimeout)
	assert.Equal(t, "cache.example.com", cfg.Redis.Host)
	assert.Equal(t, "6380", cfg.Redis.Port)
	assert.Equal(t, "redispass", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, int64(200), cfg.ListCache.MaxKeys)
	assert.Equal(t, int64(300), cfg.ListCache.MaxCost)
	assert.Equal(t, 5*time.Second, cfg.ListCache.TTL)
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test")
	cfg := config.FromEnv()

	assert.Equal(t, "test", cfg.AuthSecret)
	assert.Equal(t, 1, cfg.DailyBatchLimit)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "postgres", cfg.DB.User)
	assert.Equal(t, "password", cfg.DB.Password)
	assert.Equal(t, "tenwords", cfg.DB.Name)
	assert.Equal(t, "db/migrations", cfg.DB.Migrations)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, ":8080", cfg.Http.ListenAddr)
	assert.Equal(t, 60*time.Second, cfg.Http.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Http.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Http.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Http.ShutdownTimeout)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, "", cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, int64(10000), cfg.ListCache.MaxKeys)
	assert.Equal(t, int64(100000), cfg.ListCache.MaxCost)
	assert.Equal(t, 30*time.Second, cfg.ListCache.TTL)
}

func TestFromEnv_MissingSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	assert.Panics(t, func() { config.FromEnv() })
}
