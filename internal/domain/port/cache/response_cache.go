package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// ResponseCache is the fast-path store for idempotency short-circuiting.
// Values are pre-serialized responses so replays avoid recomputation. The
// cache is never the source of truth; callers must tolerate any failure here.
type ResponseCache interface {
	// Get returns the cached value for key, or ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)

	// SetWithTTL stores value under key with the given time-to-live
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}
