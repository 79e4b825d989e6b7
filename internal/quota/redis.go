package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyTTL = 48 * time.Hour

// Redis counts submitted batches per user and UTC day.
type Redis struct {
	rdb   *redis.Client
	limit int64
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Limit    int64
}

func NewRedis(cfg RedisConfig) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Redis{
		rdb:   rdb,
		limit: cfg.Limit,
	}
}

// Ping checks that redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Reserve takes one batch slot for userID on day. It returns false, without
// holding a slot, when the daily limit is already used up.
func (r *Redis) Reserve(ctx context.Context, userID string, day time.Time) (bool, error) {
	key := dayKey(userID, day)

	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, keyTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("increment quota: %w", err)
	}

	if incr.Val() > r.limit {
		if err := r.rdb.Decr(ctx, key).Err(); err != nil {
			return false, fmt.Errorf("undo quota increment: %w", err)
		}

		return false, nil
	}

	return true, nil
}

// Release gives back a slot taken by Reserve.
func (r *Redis) Release(ctx context.Context, userID string, day time.Time) error {
	if err := r.rdb.Decr(ctx, dayKey(userID, day)).Err(); err != nil {
		return fmt.Errorf("release quota: %w", err)
	}

	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func dayKey(userID string, day time.Time) string {
	return fmt.Sprintf("words:quota:%s:%s", userID, day.UTC().Format(time.DateOnly))
}
