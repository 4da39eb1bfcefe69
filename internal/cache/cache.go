// Package cache abstracts the read-side cache used for hot listing queries.
// Redis backs it in deployments; a TTL map stands in when Redis is absent.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
