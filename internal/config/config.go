package config

import (
	"time"

	"github.com/gamma-omg/tenwords/internal/pkg/env"
)

type Config struct {
	AuthSecret      string
	DailyBatchLimit int
	DB              dbConfig
	Http            httpConfig
	Redis           redisConfig
	ListCache       listCacheConfig
}

type dbConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	Migrations  string
	AutoMigrate bool
}

type httpConfig struct {
	ListenAddr      string
	IdleTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type redisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type listCacheConfig struct {
	MaxKeys int64
	MaxCost int64
	TTL     time.Duration
}

func FromEnv() Config {
	return Config{
		AuthSecret:      env.RequireString("AUTH_SECRET"),
		DailyBatchLimit: env.Int("DAILY_BATCH_LIMIT", 1),
		DB: dbConfig{
			Host:        env.String("DB_HOST", "localhost"),
			Port:        env.String("DB_PORT", "5432"),
			User:        env.String("DB_USER", "postgres"),
			Password:    env.String("DB_PASSWORD", "password"),
			Name:        env.String("DB_NAME", "tenwords"),
			Migrations:  env.String("DB_MIGRATIONS", "db/migrations"),
			AutoMigrate: env.Bool("DB_AUTO_MIGRATE", true),
		},
		Http: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8080"),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: redisConfig{
			Host:     env.String("REDIS_HOST", "localhost"),
			Port:     env.String("REDIS_PORT", "6379"),
			Password: env.String("REDIS_PASSWORD", ""),
			DB:       env.Int("REDIS_DB", 0),
		},
		ListCache: listCacheConfig{
			MaxKeys: env.Int64("LIST_CACHE_KEYS", 10000),
			MaxCost: env.Int64("LIST_CACHE_COST", 100000),
			TTL:     env.Duration("LIST_CACHE_TTL", 30*time.Second),
		},
	}
}
