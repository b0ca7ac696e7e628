// cache_test.go exercises the response cache against a real Valkey on DB 15.
// Tests are skipped when Valkey is unavailable.
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, responseKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func TestResponseCacheRoundTrip(t *testing.T) {
	client := testClient(t)
	rc := NewResponseCache(client, time.Minute)
	ctx := context.Background()

	if _, ok := rc.Get(ctx, "missing"); ok {
		t.Error("expected miss for unknown key")
	}

	payload := []byte(`{"totalProjects":3}`)
	rc.Set(ctx, StatsKey, payload)

	got, ok := rc.Get(ctx, StatsKey)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(got) != string(payload) {
		t.Errorf("payload: got %s, want %s", got, payload)
	}

	rc.Invalidate(ctx, StatsKey)
	if _, ok := rc.Get(ctx, StatsKey); ok {
		t.Error("expected miss after Invalidate")
	}
}

func TestResponseCacheNilIsNoop(t *testing.T) {
	var rc *ResponseCache
	ctx := context.Background()

	// None of these should panic.
	rc.Set(ctx, "k", []byte("v"))
	rc.Invalidate(ctx, "k")
	if _, ok := rc.Get(ctx, "k"); ok {
		t.Error("nil cache should always miss")
	}
}
