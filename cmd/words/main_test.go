package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gamma-omg/tenwords/internal/pkg/testdb"
	"github.com/gamma-omg/tenwords/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	listenAddr = "localhost:18080"
	baseURL    = "http://" + listenAddr
	jwtSecret  = "test-secret"
)

func setupEnv(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("container tests are disabled in short mode")
	}

	ctx := context.Background()
	pg, closePG := testdb.StartPostgres(ctx, testdb.PostgresStartRequest{
		User:     "testuser",
		Password: "testpass",
		DB:       "testdb",
	})
	t.Cleanup(closePG)

	rds, closeRedis := testdb.StartRedis(ctx)
	t.Cleanup(closeRedis)

	t.Setenv("AUTH_SECRET", jwtSecret)
	t.Setenv("HTTP_LISTEN_ADDR", listenAddr)
	t.Setenv("DB_HOST", pg.Host)
	t.Setenv("DB_PORT", pg.Port)
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_MIGRATIONS", testdb.MigrationsDir())
	t.Setenv("REDIS_HOST", rds.Host)
	t.Setenv("REDIS_PORT", rds.Port)
	t.Setenv("DAILY_BATCH_LIMIT", "1")
}

func startService(t *testing.T, ctx context.Context) <-chan error {
	t.Helper()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	ready := testutil.WaitFor(t, ctx, 200*time.Millisecond, func() bool {
		resp, err := http.Get(baseURL + "/readyz")
		if err != nil {
			return false
		}

		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	})
	require.True(t, ready, "service did not become ready")

	return errCh
}

func call(t *testing.T, method, path, userID string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+testutil.Token(t, jwtSecret, userID))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}

	return resp, out
}

func TestRun(t *testing.T) {
	setupEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	errCh := startService(t, ctx)

	resp, err := http.Get(baseURL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	batch := map[string]any{"words": testutil.TenWords("w")}

	resp, body := call(t, "POST", "/api/v1/words/validate", "", batch)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthenticated", body["kind"])

	resp, body = call(t, "POST", "/api/v1/words/validate", "alice", batch)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, body = call(t, "POST", "/api/v1/words", "alice", batch)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(10), body["inserted_count"])

	resp, body = call(t, "POST", "/api/v1/words", "bob", map[string]any{
		"words": append([]string{"WA"}, testutil.TenWords("x")[:9]...),
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Conflict", body["kind"])
	conflicts := body["conflicts"].(map[string]any)
	assert.Equal(t, []any{"wa"}, conflicts["stored"])
	assert.Equal(t, []any{}, conflicts["in_batch"])

	resp, body = call(t, "POST", "/api/v1/words", "alice", map[string]any{"words": testutil.TenWords("y")})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "TooManyRequests", body["kind"])

	resp, body = call(t, "POST", "/api/v1/words", "bob", map[string]any{"words": testutil.TenWords("z")[:3]})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, float64(3), body["actual"])

	resp, body = call(t, "GET", "/api/v1/words?sort=alpha&limit=3", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := body["words"].([]any)
	require.Len(t, listed, 3)
	assert.Equal(t, "wa", listed[0].(map[string]any)["key"])

	resp, body = call(t, "GET", "/api/v1/words?scope=mine", "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["words"])

	metrics, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	_ = metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not shut down in time")
	}
}

func TestRun_Cancel(t *testing.T) {
	setupEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	errCh := startService(t, ctx)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not shut down in time after context cancellation")
	}
}
