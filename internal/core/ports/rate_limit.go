package ports

import (
	"context"
	"time"
)

// RateLimitStore counts hits per key within a rolling window. Implementations
// may be process-local (courtesy throttle, reset on restart) or shared
// (Redis) for multi-instance deployments; process-local state is never
// treated as authoritative.
type RateLimitStore interface {
	// Incr records one hit for key and returns the current count within the
	// window.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
