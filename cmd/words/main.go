package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gamma-omg/tenwords/internal/config"
	"github.com/gamma-omg/tenwords/internal/pkg/middleware"
	"github.com/gamma-omg/tenwords/internal/pkg/router"
	"github.com/gamma-omg/tenwords/internal/quota"
	"github.com/gamma-omg/tenwords/internal/rest"
	"github.com/gamma-omg/tenwords/internal/service"
	"github.com/gamma-omg/tenwords/internal/store"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func run(ctx context.Context) error {
	slog.Info("starting words service")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := config.FromEnv()
	db, err := store.NewPostgresDB(store.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := store.Migrate(db, cfg.DB.Migrations); err != nil {
			return fmt.Errorf("failed to migrate db: %w", err)
		}
	}

	deps := []pinger{dbPinger{db}}

	var q *quota.Redis
	if cfg.DailyBatchLimit > 0 {
		q = quota.NewRedis(quota.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Limit:    int64(cfg.DailyBatchLimit),
		})
		defer q.Close()
		deps = append(deps, q)
	}

	srv := service.NewWordsService(store.NewPostgresStore(db), quotaOrNil(q), service.WordsServiceConfig{
		DailyBatchLimit: cfg.DailyBatchLimit,
		ListCacheKeys:   cfg.ListCache.MaxKeys,
		ListCacheCost:   cfg.ListCache.MaxCost,
		ListCacheTTL:    cfg.ListCache.TTL,
	})
	defer srv.Close()

	r := router.New()
	r.Use(middleware.Recover(), middleware.Log(), middleware.Metrics())
	r.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		for _, dep := range deps {
			if err := dep.Ping(r.Context()); err != nil {
				slog.Warn("dependency is not ready", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("GET /metrics", promhttp.Handler())

	api := r.SubRouter("/api/v1")
	api.Use(middleware.Auth([]byte(cfg.AuthSecret)))
	rest.NewAPI(srv).Register(api)

	httpSrv := &http.Server{
		Addr:         cfg.Http.ListenAddr,
		IdleTimeout:  cfg.Http.IdleTimeout,
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
		Handler:      r,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type dbPinger struct {
	db *sql.DB
}

func (p dbPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// quotaOrNil keeps a nil *quota.Redis from becoming a non-nil interface.
func quotaOrNil(q *quota.Redis) service.DailyQuota {
	if q == nil {
		return nil
	}
	return q
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("words service terminated with error", "error", err)
		os.Exit(1)
	}
}
