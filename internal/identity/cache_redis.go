package identity

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"trustgraph/pkg/domain"
)

const resolveKeyPrefix = "idr:subject:"

// ResolveCache is a read-through cache in front of Resolve. Entries are
// written on cache miss and dropped on update and deactivate, so a stale
// identifier can only be served inside the TTL window between an external
// write and its invalidation.
type ResolveCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResolveCache(client *redis.Client, ttl time.Duration) *ResolveCache {
	return &ResolveCache{client: client, ttl: ttl}
}

// Get returns the cached identifier and whether it was present. Errors are
// reported as a miss; the store remains authoritative.
func (c *ResolveCache) Get(ctx context.Context, subject domain.Account) (string, bool) {
	val, err := c.client.Get(ctx, resolveKeyPrefix+string(subject)).Result()
	if errors.Is(err, redis.Nil) || err != nil {
		return "", false
	}
	return val, true
}

// Set stores the resolved identifier with the configured TTL.
func (c *ResolveCache) Set(ctx context.Context, subject domain.Account, identifier string) {
	_ = c.client.Set(ctx, resolveKeyPrefix+string(subject), identifier, c.ttl).Err()
}

// Invalidate drops the cached entry after a mutation.
func (c *ResolveCache) Invalidate(ctx context.Context, subject domain.Account) {
	_ = c.client.Del(ctx, resolveKeyPrefix+string(subject)).Err()
}
