package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// KeyPrefix namespaces resolution cache keys.
const KeyPrefix = "nexus:resolve:"

// DefaultTTL is how long a resolution stays cached.
const DefaultTTL = 24 * time.Hour

// kv is the subset of *goredis.Client used by ResolutionCache.
type kv interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// ResolutionCache stores successful resolutions keyed by the trimmed user
// input. It implements resolver.Cache.
type ResolutionCache struct {
	client kv
	ttl    time.Duration
}

// NewResolutionCache creates a cache on client. A non-positive ttl uses DefaultTTL.
func NewResolutionCache(client *goredis.Client, ttl time.Duration) *ResolutionCache {
	return newResolutionCache(client, ttl)
}

func newResolutionCache(client kv, ttl time.Duration) *ResolutionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResolutionCache{client: client, ttl: ttl}
}

// Get returns the cached metadata for input. A miss, including an entry
// whose source is unknown, returns ok == false and a nil error.
func (c *ResolutionCache) Get(ctx context.Context, input string) (*domain.Metadata, bool, error) {
	raw, err := c.client.Get(ctx, KeyPrefix+input).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading resolution cache: %w", err)
	}

	var meta domain.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, false, fmt.Errorf("decoding cached resolution: %w", err)
	}
	// Entries written for a source that is no longer known are misses.
	if !domain.IsValidSourceType(meta.Source) {
		return nil, false, nil
	}
	return &meta, true, nil
}

// Set caches meta for input.
func (c *ResolutionCache) Set(ctx context.Context, input string, meta *domain.Metadata) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding resolution: %w", err)
	}
	if err := c.client.Set(ctx, KeyPrefix+input, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing resolution cache: %w", err)
	}
	return nil
}
