// response.go provides a Valkey-backed cache for serialized JSON responses.
// The stats and category-count endpoints aggregate over the whole projects
// table; caching their payloads for a short TTL keeps repeated dashboard
// loads off the database.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix namespaces cached responses in Valkey.
	responseKeyPrefix = "resp:"

	// DefaultResponseTTL is how long a cached payload stays valid.
	DefaultResponseTTL = 1 * time.Minute
)

// Keys for the cached overview payloads.
const (
	StatsKey      = "stats_overview"
	CategoriesKey = "categories_list"
)

// ResponseCache stores serialized JSON payloads in Valkey. A nil
// ResponseCache is a valid no-op cache, so callers need no nil checks
// when Valkey is not configured.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get retrieves a cached payload. Returns false on miss or cache error.
func (rc *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if rc == nil {
		return nil, false
	}
	val, err := rc.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("response cache hit", "key", key)
	return val, true
}

// Set stores a payload with the configured TTL. Errors are logged, not
// returned: a failed cache write never fails the request.
func (rc *ResponseCache) Set(ctx context.Context, key string, payload []byte) {
	if rc == nil {
		return
	}
	if err := rc.client.Set(ctx, responseKeyPrefix+key, payload, rc.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// Invalidate removes cached payloads, used when a write changes the
// aggregates they summarize.
func (rc *ResponseCache) Invalidate(ctx context.Context, keys ...string) {
	if rc == nil || len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = responseKeyPrefix + k
	}
	if err := rc.client.Del(ctx, prefixed...).Err(); err != nil {
		slog.Warn("response cache invalidate error", "error", err)
	}
}
