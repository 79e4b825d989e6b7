package service

import (
	"context"
	"time"
)

// DailyQuota limits how many batches a user may store per UTC day.
type DailyQuota interface {
	Reserve(ctx context.Context, userID string, day time.Time) (bool, error)
	Release(ctx context.Context, userID string, day time.Time) error
}

// NoQuota never limits submissions.
type NoQuota struct{}

func (NoQuota) Reserve(context.Context, string, time.Time) (bool, error) {
	return true, nil
}

func (NoQuota) Release(context.Context, string, time.Time) error {
	return nil
}
