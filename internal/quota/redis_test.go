package quota

import (
	"context"
	"flag"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	testdb "github.com/gamma-omg/tenwords/internal/pkg/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	redisHost string
	redisPort string
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	res, closer := testdb.StartRedis(context.Background())
	redisHost = res.Host
	redisPort = res.Port

	code := m.Run()
	closer()
	os.Exit(code)
}

func newQuota(t *testing.T, limit int64) *Redis {
	t.Helper()
	if redisHost == "" {
		t.Skip("redis integration tests are disabled in short mode")
	}

	q := NewRedis(RedisConfig{Host: redisHost, Port: redisPort, Limit: limit})
	t.Cleanup(func() { _ = q.Close() })
	require.NoError(t, q.Ping(t.Context()))
	return q
}

func TestReserve(t *testing.T) {
	q := newQuota(t, 1)
	user := uuid.NewString()
	day := time.Date(2026, 5, 1, 23, 59, 0, 0, time.UTC)

	ok, err := q.Reserve(t.Context(), user, day)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.Reserve(t.Context(), user, day)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, int64(1), used(t, q, user, day))
}

func TestReserve_NewDayResets(t *testing.T) {
	q := newQuota(t, 1)
	user := uuid.NewString()
	day := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	ok, err := q.Reserve(t.Context(), user, day)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = q.Reserve(t.Context(), user, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelease(t *testing.T) {
	q := newQuota(t, 1)
	user := uuid.NewString()
	day := time.Now()

	ok, err := q.Reserve(t.Context(), user, day)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, q.Release(t.Context(), user, day))

	ok, err = q.Reserve(t.Context(), user, day)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReserve_Concurrent(t *testing.T) {
	q := newQuota(t, 3)
	user := uuid.NewString()
	day := time.Now()

	var granted atomic.Int64
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := q.Reserve(context.Background(), user, day)
			assert.NoError(t, err)
			if ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), granted.Load())
	assert.Equal(t, int64(3), used(t, q, user, day))
}

func TestDayKey(t *testing.T) {
	day := time.Date(2026, 5, 1, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	assert.Equal(t, "words:quota:u1:2026-05-02", dayKey("u1", day))
}

func used(t *testing.T, q *Redis, userID string, day time.Time) int64 {
	t.Helper()

	n, err := q.rdb.Get(t.Context(), dayKey(userID, day)).Int64()
	require.NoError(t, err)
	return n
}
